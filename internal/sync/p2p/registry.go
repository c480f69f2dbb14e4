package p2p

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/victorvcruz/netclip/internal/logger"
)

// Registry is the set of partner addresses this node relays to. It never
// holds the node's own address and never forgets a partner once learned.
type Registry struct {
	mu       sync.Mutex
	self     string
	partners map[string]struct{}
	log      zerolog.Logger
}

func NewRegistry(self string) *Registry {
	return &Registry{
		self:     self,
		partners: make(map[string]struct{}),
		log:      logger.Component("registry"),
	}
}

func (r *Registry) Self() string {
	return r.self
}

// Register adds addr and reports whether it was new. The node's own address
// and the empty string are refused.
func (r *Registry) Register(addr string) bool {
	r.log.Debug().Str("addr", addr).Msg("Register?")
	if addr == "" || addr == r.self {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.partners[addr]; exists {
		return false
	}
	r.partners[addr] = struct{}{}
	r.log.Info().Str("addr", addr).Int("partners", len(r.partners)).Msg("Registered partner")
	return true
}

func (r *Registry) Contains(addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.partners[addr]
	return exists
}

// Snapshot returns a sorted copy of the partners so callers can do network
// I/O without holding the lock.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	peers := make([]string, 0, len(r.partners))
	for addr := range r.partners {
		peers = append(peers, addr)
	}
	r.mu.Unlock()

	sort.Strings(peers)
	return peers
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.partners)
}
