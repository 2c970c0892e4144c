package catalog

import (
	"fmt"
	"sort"

	"github.com/ghosthack3r/wintune/internal/server/adapter"
	"github.com/ghosthack3r/wintune/internal/shared/types"
)

// DefaultProfileName is the fallback profile. It covers every catalog
// parameter so a restore without a snapshot still has a target for each key.
const DefaultProfileName = "default"

// Registry holds the built-in profiles
type Registry struct {
	profiles map[string]types.Profile
	names    []string
}

// Get returns the named profile
func (r *Registry) Get(name string) (types.Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return types.Profile{}, fmt.Errorf("%w: %s", types.ErrProfileNotFound, name)
	}
	return p, nil
}

// Default returns the full-coverage fallback profile
func (r *Registry) Default() types.Profile {
	return r.profiles[DefaultProfileName]
}

// List returns profile metadata sorted by name
func (r *Registry) List() []*types.ProfileMeta {
	out := make([]*types.ProfileMeta, 0, len(r.names))
	for _, name := range r.names {
		prof := r.profiles[name]
		out = append(out, prof.ToMeta())
	}
	return out
}

// defaultProfile is generated from the catalog so it always covers every
// parameter at its documented default.
func defaultProfile(c *Catalog) types.Profile {
	entries := make([]types.ProfileEntry, 0, c.Len())
	for _, p := range c.params {
		entries = append(entries, types.ProfileEntry{Key: p.Key, Value: p.Default})
	}
	return types.Profile{
		Name:        DefaultProfileName,
		Description: "Windows defaults for every managed parameter.",
		Entries:     entries,
	}
}

func builtinProfiles() []types.Profile {
	return []types.Profile{
		{
			Name:        "gaming",
			Description: "Low latency: lean TCP options, game mode on, capture off, top power plan.",
			Entries: []types.ProfileEntry{
				{Key: "DefaultTTL", Value: "64"},
				{Key: "Tcp1323Opts", Value: "1"},
				{Key: "SackOpts", Value: "1"},
				{Key: "MaxDupAcks", Value: "2"},
				{Key: "autotuninglevel", Value: "normal"},
				{Key: "rss", Value: "enabled"},
				{Key: "ecncapability", Value: "disabled"},
				{Key: "timestamps", Value: "disabled"},
				{Key: "congestionprovider", Value: "ctcp"},
				{Key: "SysMainStart", Value: adapter.StartDisabled},
				{Key: "ActivePowerScheme", Value: adapter.HighPerfPlanGUID},
				{Key: "AllowAutoGameMode", Value: "1"},
				{Key: "GameDVR_Enabled", Value: "0"},
				{Key: "AppCaptureEnabled", Value: "0"},
			},
		},
		{
			Name:        "throughput",
			Description: "High-speed broadband: window scaling and timestamps on, cubic congestion control.",
			Entries: []types.ProfileEntry{
				{Key: "DefaultTTL", Value: "64"},
				{Key: "Tcp1323Opts", Value: "3"},
				{Key: "SackOpts", Value: "1"},
				{Key: "MaxDupAcks", Value: "2"},
				{Key: "autotuninglevel", Value: "normal"},
				{Key: "rss", Value: "enabled"},
				{Key: "ecncapability", Value: "enabled"},
				{Key: "timestamps", Value: "allowed"},
				{Key: "congestionprovider", Value: "cubic"},
			},
		},
		{
			Name:        "balanced",
			Description: "Moderate tuning without touching game mode or the service set.",
			Entries: []types.ProfileEntry{
				{Key: "DefaultTTL", Value: "128"},
				{Key: "Tcp1323Opts", Value: "3"},
				{Key: "SackOpts", Value: "1"},
				{Key: "autotuninglevel", Value: "normal"},
				{Key: "rss", Value: "enabled"},
				{Key: "ecncapability", Value: "enabled"},
				{Key: "congestionprovider", Value: "ctcp"},
				{Key: "ActivePowerScheme", Value: adapter.BalancedPlanGUID},
			},
		},
	}
}

func newRegistry(c *Catalog) (*Registry, error) {
	profiles := append(builtinProfiles(), defaultProfile(c))

	r := &Registry{profiles: make(map[string]types.Profile, len(profiles))}
	for _, prof := range profiles {
		if _, dup := r.profiles[prof.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", prof.Name)
		}
		if err := validateProfile(c, prof); err != nil {
			return nil, fmt.Errorf("profile %q: %w", prof.Name, err)
		}
		r.profiles[prof.Name] = prof
		r.names = append(r.names, prof.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

func validateProfile(c *Catalog, prof types.Profile) error {
	seen := make(map[string]bool, len(prof.Entries))
	for _, e := range prof.Entries {
		if seen[e.Key] {
			return fmt.Errorf("key %q listed twice", e.Key)
		}
		seen[e.Key] = true

		p, err := c.Get(e.Key)
		if err != nil {
			return err
		}
		if !p.AllowsValue(e.Value) {
			return fmt.Errorf("value %q not allowed for %q", e.Value, e.Key)
		}
	}
	return nil
}
