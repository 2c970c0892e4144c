package types

// ProfileEntry is one target value inside a profile
type ProfileEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Profile is a named, partial bundle of target values. Profiles are static
// data registered once at startup; a profile need not cover every catalog
// parameter.
type Profile struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Entries     []ProfileEntry `json:"entries"`
}

// Lookup returns the profile's target value for key, if it defines one
func (p *Profile) Lookup(key string) (string, bool) {
	for _, e := range p.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// ProfileMeta represents profile metadata for listing
type ProfileMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	EntryCount  int    `json:"entry_count"`
}

// ToMeta converts a Profile to ProfileMeta
func (p *Profile) ToMeta() *ProfileMeta {
	return &ProfileMeta{
		Name:        p.Name,
		Description: p.Description,
		EntryCount:  len(p.Entries),
	}
}
