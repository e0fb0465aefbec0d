package events

import (
	"sync"
)

// InMemoryStore keeps event streams in process memory
type InMemoryStore struct {
	mutex   sync.RWMutex
	streams map[string][]Event
}

// NewInMemoryStore creates an empty store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		streams: make(map[string][]Event),
	}
}

var _ Store = (*InMemoryStore)(nil)

// Append adds an event to the stream
func (s *InMemoryStore) Append(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.streams[streamID] = append(s.streams[streamID], event)
	return nil
}

// Read returns the stream's events in append order
func (s *InMemoryStore) Read(streamID string) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	events := s.streams[streamID]
	out := make([]Event, len(events))
	copy(out, events)
	return out, nil
}
