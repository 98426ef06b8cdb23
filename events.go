package convex

const (
	BLOCKER_ENTER EventType = iota
	BLOCKER_STAY
	BLOCKER_EXIT
	ON_BLOCKED
	ON_CLEARED
)

type pairKey struct {
	space   *Space
	blocker *Blocker
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Blocker events, sent while a blocker carves a space
type BlockerEnterEvent struct {
	Space   *Space
	Blocker *Blocker
}

func (e BlockerEnterEvent) Type() EventType { return BLOCKER_ENTER }

type BlockerStayEvent struct {
	Space   *Space
	Blocker *Blocker
}

func (e BlockerStayEvent) Type() EventType { return BLOCKER_STAY }

type BlockerExitEvent struct {
	Space   *Space
	Blocker *Blocker
}

func (e BlockerExitEvent) Type() EventType { return BLOCKER_EXIT }

// Blocked/Cleared events, sent when nothing or something is left of a space
type BlockedEvent struct {
	Space *Space
}

func (e BlockedEvent) Type() EventType { return ON_BLOCKED }

type ClearedEvent struct {
	Space *Space
}

func (e ClearedEvent) Type() EventType { return ON_CLEARED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Hit tracking for Enter/Stay/Exit detection
	previousHits map[pairKey]bool
	currentHits  map[pairKey]bool

	blockedStates map[*Space]bool
}

func NewEvents() Events {
	return Events{
		listeners:     make(map[EventType][]EventListener),
		buffer:        make([]Event, 0, 256),
		previousHits:  make(map[pairKey]bool),
		currentHits:   make(map[pairKey]bool),
		blockedStates: make(map[*Space]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// init allows the zero Events to be used
func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

// recordHits is called after a space update with the blockers that carved it
func (e *Events) recordHits(space *Space, blockers []*Blocker) {
	e.init()
	for _, b := range blockers {
		e.currentHits[pairKey{space: space, blocker: b}] = true
	}
}

// processHitEvents compares current and previous hits to detect Enter/Stay/Exit
func (e *Events) processHitEvents() {
	for pair := range e.currentHits {
		if e.previousHits[pair] {
			e.buffer = append(e.buffer, BlockerStayEvent{Space: pair.space, Blocker: pair.blocker})
		} else {
			e.buffer = append(e.buffer, BlockerEnterEvent{Space: pair.space, Blocker: pair.blocker})
		}
	}

	for pair := range e.previousHits {
		if !e.currentHits[pair] {
			e.buffer = append(e.buffer, BlockerExitEvent{Space: pair.space, Blocker: pair.blocker})
		}
	}

	// Swap for next update and clear current
	e.previousHits, e.currentHits = e.currentHits, e.previousHits
	clear(e.currentHits)
}

// processBlockedEvents emits an event when a space becomes fully blocked or
// free again. The first update of a space only records its state.
func (e *Events) processBlockedEvents(spaces []*Space) {
	e.init()
	for _, space := range spaces {
		blocked := space.IsBlocked()
		trackedState, exists := e.blockedStates[space]
		if !exists {
			e.blockedStates[space] = blocked
			continue
		}

		if !trackedState && blocked {
			e.buffer = append(e.buffer, BlockedEvent{Space: space})
			e.blockedStates[space] = true
		} else if trackedState && !blocked {
			e.buffer = append(e.buffer, ClearedEvent{Space: space})
			e.blockedStates[space] = false
		}
	}
}

// forgetSpace drops the tracking of a removed space
func (e *Events) forgetSpace(space *Space) {
	delete(e.blockedStates, space)
	for pair := range e.previousHits {
		if pair.space == space {
			delete(e.previousHits, pair)
		}
	}
}

// forgetBlocker drops the tracking of a removed blocker
func (e *Events) forgetBlocker(blocker *Blocker) {
	for pair := range e.previousHits {
		if pair.blocker == blocker {
			delete(e.previousHits, pair)
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.init()
	e.processHitEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
