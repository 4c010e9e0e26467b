package policy

import (
	"strings"

	"github.com/famomatic/ytmeta/internal/innertube"
)

// Selector decides which client profiles a request attempts, and in which
// order.
type Selector interface {
	Select() []innertube.ClientProfile
	Registry() innertube.Registry
}

type defaultSelector struct {
	registry    innertube.Registry
	clientOrder []string
	clientSkip  map[string]struct{}
}

// NewSelector builds a selector over the given registry. clientOrder
// overrides the registry's priority ranking; clientSkip removes profiles from
// whatever order is in effect. Unknown names are ignored.
func NewSelector(registry innertube.Registry, clientOrder []string, clientSkip []string) Selector {
	skip := make(map[string]struct{}, len(clientSkip))
	for _, name := range clientSkip {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		skip[normalized] = struct{}{}
	}
	return &defaultSelector{
		registry:    registry,
		clientOrder: clientOrder,
		clientSkip:  skip,
	}
}

func (s *defaultSelector) Registry() innertube.Registry {
	return s.registry
}

func (s *defaultSelector) Select() []innertube.ClientProfile {
	if len(s.clientOrder) > 0 {
		if profiles := s.fromOverrides(); len(profiles) > 0 {
			return profiles
		}
	}
	return s.fromRegistry()
}

func (s *defaultSelector) fromOverrides() []innertube.ClientProfile {
	var profiles []innertube.ClientProfile
	seen := make(map[string]struct{}, len(s.clientOrder))
	for _, name := range s.clientOrder {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		if _, skipped := s.clientSkip[normalized]; skipped {
			continue
		}
		if p, ok := s.registry.Get(normalized); ok {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

func (s *defaultSelector) fromRegistry() []innertube.ClientProfile {
	all := s.registry.All()
	profiles := make([]innertube.ClientProfile, 0, len(all))
	for _, p := range all {
		if _, skipped := s.clientSkip[p.ID]; skipped {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}
