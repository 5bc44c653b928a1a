package workflow

// EventKind names the field that changed.
type EventKind string

const (
	// EventSnapshot carries the full state; it is never published by the
	// session itself and is used to prime new listeners.
	EventSnapshot    EventKind = "snapshot"
	EventLanguage    EventKind = "language"
	EventSource      EventKind = "source"
	EventStdin       EventKind = "stdin"
	EventOutput      EventKind = "output"
	EventResult      EventKind = "result"
	EventRunning     EventKind = "running"
	EventAnnotations EventKind = "annotations"
	EventTheme       EventKind = "theme"
)

// Event is delivered to subscribers after a change. State is the session
// state right after the change and Seq orders events of one session.
//
// Events from concurrent changes may reach a subscriber out of order. The
// event with the highest Seq carries the current state; listeners should
// drop any event whose Seq is not above the last one applied.
type Event struct {
	Kind  EventKind `json:"kind"`
	Seq   uint64    `json:"seq"`
	State Snapshot  `json:"state"`
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it. fn is called synchronously from the goroutine making the
// change and must not block.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// SnapshotEvent returns the full state as an EventSnapshot. Its Seq is that
// of the last published change, so later changes sort after it.
func (s *Session) SnapshotEvent() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Event{Kind: EventSnapshot, Seq: s.seq, State: s.snapshotLocked()}
}

func (s *Session) publish(kinds ...EventKind) {
	s.mu.Lock()
	events := make([]Event, 0, len(kinds))
	snap := s.snapshotLocked()
	for _, kind := range kinds {
		s.seq++
		events = append(events, Event{Kind: kind, Seq: s.seq, State: snap})
	}
	s.mu.Unlock()

	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
