//go:build !windows

package adapter

import "github.com/ghosthack3r/wintune/internal/shared/types"

// stubRegistry is the non-Windows implementation: every call reports the
// backend as unavailable so reads surface as QueryError and writes as
// failed results, without aborting the engine.
type stubRegistry struct{}

func newRegistryAPI() registryAPI {
	return stubRegistry{}
}

func (stubRegistry) ReadDWORD(types.RegistryRoot, string, string) (uint32, error) {
	return 0, types.ErrBackendUnavailable
}

func (stubRegistry) WriteDWORD(types.RegistryRoot, string, string, uint32) error {
	return types.ErrBackendUnavailable
}

func (stubRegistry) DeleteValue(types.RegistryRoot, string, string) error {
	return types.ErrBackendUnavailable
}
