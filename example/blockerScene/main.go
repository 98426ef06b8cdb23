package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/convex"
	"github.com/akmonengine/convex/clip"
	"github.com/akmonengine/convex/hull"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a room crossed by a pillar and a rotating cone
func SetupScene() (*convex.World, *convex.Space, *convex.Blocker, error) {
	world := &convex.World{
		Events:      convex.NewEvents(),
		SpatialGrid: convex.NewSpatialGrid(4.0, 64),
		Workers:     2,
	}

	// Room 10m x 4m x 10m
	room := clip.New()
	if err := hull.BuildBox(room, mgl64.Translate3D(0, 2, 0), mgl64.Vec3{5, 2, 5}); err != nil {
		return nil, nil, nil, err
	}
	space := convex.NewSpace(room)
	space.Id = "room"
	// Blockers under priority 1 walk through the room
	space.BlockingPriority = 1
	world.AddSpace(space)

	// Pillar through the floor and the ceiling
	pillarShape := clip.New()
	if err := pillarShape.SetToCube(mgl64.Vec3{0.5, 3, 0.5}); err != nil {
		return nil, nil, nil, err
	}
	pillar := convex.NewBlocker(pillarShape, convex.Transform{Position: mgl64.Vec3{2, 2, 2}, Rotation: mgl64.QuatIdent()})
	pillar.Id = "pillar"
	pillar.Priority = 1
	world.AddBlocker(pillar)

	// Cone of light, sweeping the room
	coneShape := clip.New()
	if err := hull.BuildCone(coneShape, mgl64.Ident4(), 4, math.Pi/8, 8); err != nil {
		return nil, nil, nil, err
	}
	cone := convex.NewBlocker(coneShape, convex.Transform{Position: mgl64.Vec3{0, 2, 0}, Rotation: mgl64.QuatIdent()})
	cone.Id = "cone"
	cone.Priority = 1
	world.AddBlocker(cone)

	// Low crate, ignored by the room
	crateShape := clip.New()
	if err := crateShape.SetToCube(mgl64.Vec3{0.5, 0.5, 0.5}); err != nil {
		return nil, nil, nil, err
	}
	crate := convex.NewBlocker(crateShape, convex.Transform{Position: mgl64.Vec3{-3, 0.5, -3}, Rotation: mgl64.QuatIdent()})
	crate.Id = "crate"
	world.AddBlocker(crate)

	return world, space, cone, nil
}

func freeVolume(space *convex.Space) float64 {
	total := 0.0
	for _, v := range space.Result.Volumes() {
		total += v.Volume()
	}
	return total
}

func main() {
	world, space, cone, err := SetupScene()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	world.Events.Subscribe(convex.BLOCKER_ENTER, func(event convex.Event) {
		e := event.(convex.BlockerEnterEvent)
		fmt.Printf("  %v enters %v\n", e.Blocker.Id, e.Space.Id)
	})
	world.Events.Subscribe(convex.BLOCKER_EXIT, func(event convex.Event) {
		e := event.(convex.BlockerExitEvent)
		fmt.Printf("  %v leaves %v\n", e.Blocker.Id, e.Space.Id)
	})

	const steps = 12
	for step := 0; step < steps; step++ {
		angle := 2 * math.Pi * float64(step) / steps
		cone.Transform.Rotation = mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0})

		fmt.Printf("--- STEP %d (%.0f°) ---\n", step+1, mgl64.RadToDeg(angle))
		if err := world.Update(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Printf("  volumes: %d, free: %.3f m³\n", space.Result.VolumeCount(), freeVolume(space))
	}

	// Dump the last result for a viewer
	if len(os.Args) > 1 {
		mesh := space.Result.Mesh()
		data, err := json.Marshal(mesh)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := os.WriteFile(os.Args[1], data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("mesh written to %s (%d triangles)\n", os.Args[1], mesh.TriangleCount())
	}
}
