package config

import (
	"fmt"

	"codejudge/internal/sandbox/security"
)

// ProfileResolver resolves a profile name to its isolation settings
// from the static map loaded out of AppConfig.Profiles.
type ProfileResolver struct {
	profiles map[string]ProfileConfig
}

// NewProfileResolver builds a resolver over a fixed profile map.
func NewProfileResolver(profiles map[string]ProfileConfig) *ProfileResolver {
	return &ProfileResolver{profiles: profiles}
}

// Resolve implements security.ProfileResolver.
func (r *ProfileResolver) Resolve(profile string) (security.IsolationProfile, error) {
	p, ok := r.profiles[profile]
	if !ok {
		return security.IsolationProfile{}, fmt.Errorf("unknown isolation profile %q", profile)
	}
	return security.IsolationProfile{
		RootFS:         p.RootFS,
		SeccompProfile: p.SeccompProfile,
		DisableNetwork: p.DisableNetwork,
	}, nil
}
