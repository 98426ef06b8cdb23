package volume

// Mesh is a flat triangle soup ready for upload or serialization.
// Every face is fan triangulated and gets its own vertices so normals stay
// flat per face.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

func (m Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Mesh exports the faces of the volume. Faces with fewer than three vertices
// are skipped.
func (v *Volume) Mesh() Mesh {
	var mesh Mesh
	v.appendMesh(&mesh)
	return mesh
}

// AppendMesh adds the faces of the volume to an existing mesh.
func (v *Volume) AppendMesh(mesh *Mesh) {
	v.appendMesh(mesh)
}

func (v *Volume) appendMesh(mesh *Mesh) {
	for _, face := range v.faces {
		if len(face.vertices) < 3 {
			continue
		}

		base := uint32(mesh.VertexCount())
		n := face.normal
		for _, index := range face.vertices {
			p := v.vertices[index]
			mesh.Vertices = append(mesh.Vertices, float32(p.X()), float32(p.Y()), float32(p.Z()))
			mesh.Normals = append(mesh.Normals, float32(n.X()), float32(n.Y()), float32(n.Z()))
		}
		for i := 1; i < len(face.vertices)-1; i++ {
			mesh.Indices = append(mesh.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
}
