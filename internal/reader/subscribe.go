package reader

// Subscribe returns a channel receiving every view published after the
// call. The channel holds only the latest view: a slow subscriber skips
// intermediate views rather than blocking publication. The returned func
// unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Published, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan Published, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) broadcast(p Published) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- p:
		default:
			// Replace the stale pending view.
			select {
			case <-ch:
			default:
			}
			ch <- p
		}
	}
}

// Close closes all subscriber channels. It does not close the store.
func (s *Session) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.closed = true
}
