package clipboard

import "sync"

// Snapshot holds the two clipboard values a node tracks: the text the
// monitor saw on its last poll and the text last written from the network.
// The monitor owns lastObserved; ApplyRemoteClipboard owns lastRemote.
type Snapshot struct {
	mu           sync.Mutex
	lastObserved string
	lastRemote   string
	hasRemote    bool
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Observe records text as the last observed value and reports whether it
// differs from the previous one.
func (s *Snapshot) Observe(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == s.lastObserved {
		return false
	}
	s.lastObserved = text
	return true
}

// Seed sets the observed baseline without reporting a change.
func (s *Snapshot) Seed(text string) {
	s.mu.Lock()
	s.lastObserved = text
	s.mu.Unlock()
}

func (s *Snapshot) LastObserved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastObserved
}

// SetRemote records text as the last value applied from the network and
// returns the value it replaced.
func (s *Snapshot) SetRemote(text string) (prev string, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, hadPrev = s.lastRemote, s.hasRemote
	s.lastRemote, s.hasRemote = text, true
	return prev, hadPrev
}

func (s *Snapshot) restoreRemote(prev string, hadPrev bool) {
	s.mu.Lock()
	s.lastRemote, s.hasRemote = prev, hadPrev
	s.mu.Unlock()
}

// IsEcho reports whether text is exactly what the network last wrote.
func (s *Snapshot) IsEcho(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasRemote && text == s.lastRemote
}

func (s *Snapshot) LastRemote() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRemote, s.hasRemote
}
