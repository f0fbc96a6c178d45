package store

func (s *Store) InsertStreamEvent(ev StreamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streamIDs[ev.ID]; ok {
		return ErrDuplicate
	}
	s.streamEvents = append(s.streamEvents, ev)
	s.streamIDs[ev.ID] = struct{}{}
	if over := len(s.streamEvents) - s.limits.MaxStreamEvents; over > 0 {
		for _, evicted := range s.streamEvents[:over] {
			delete(s.streamIDs, evicted.ID)
		}
		s.streamEvents = append([]StreamEvent(nil), s.streamEvents[over:]...)
	}
	return nil
}

// ListStreamEvents returns up to limit stream events, newest first.
func (s *Store) ListStreamEvents(limit int) []StreamEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.streamEvents) {
		limit = len(s.streamEvents)
	}
	out := make([]StreamEvent, 0, limit)
	for i := len(s.streamEvents) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.streamEvents[i])
	}
	return out
}
