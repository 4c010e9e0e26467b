package innertube

import (
	"sort"
	"sync"
)

type defaultRegistry struct {
	clients map[string]ClientProfile
	mu      sync.RWMutex
}

// NewRegistry creates a registry holding every built-in persona, keyed by
// profile alias.
func NewRegistry() Registry {
	return &defaultRegistry{
		clients: map[string]ClientProfile{
			WebClient.ID:             WebClient,
			WebEmbeddedClient.ID:     WebEmbeddedClient,
			WebCreatorClient.ID:      WebCreatorClient,
			AndroidClient.ID:         AndroidClient,
			AndroidEmbeddedClient.ID: AndroidEmbeddedClient,
			AndroidCreatorClient.ID:  AndroidCreatorClient,
			IOSClient.ID:             IOSClient,
			IOSEmbeddedClient.ID:     IOSEmbeddedClient,
			IOSCreatorClient.ID:      IOSCreatorClient,
		},
	}
}

// NewRegistryWithKeys is NewRegistry with per-persona API key overrides,
// keyed by profile alias. Unknown aliases are ignored.
func NewRegistryWithKeys(keys map[string]string) Registry {
	reg := NewRegistry().(*defaultRegistry)
	for id, key := range keys {
		if key == "" {
			continue
		}
		if profile, ok := reg.clients[id]; ok {
			profile.APIKey = key
			reg.clients[id] = profile
		}
	}
	return reg
}

func (r *defaultRegistry) Get(name string) (ClientProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	return c, ok
}

// All returns every registered profile ordered by priority.
func (r *defaultRegistry) All() []ClientProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]ClientProfile, 0, len(r.clients))
	for _, c := range r.clients {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Priority < all[j].Priority })
	return all
}
