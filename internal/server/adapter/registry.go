package adapter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

// registryAPI is the minimal registry surface the manager needs. The real
// implementation lives behind a windows build tag; tests inject a fake.
type registryAPI interface {
	ReadDWORD(root types.RegistryRoot, path, name string) (uint32, error)
	WriteDWORD(root types.RegistryRoot, path, name string, value uint32) error
	DeleteValue(root types.RegistryRoot, path, name string) error
}

var (
	// errValueNotSet means the key or the named value does not exist.
	// This is the backend's explicit "not configured" state, distinct
	// from a query error.
	errValueNotSet = errors.New("registry value not set")
	// errWrongType means the value exists but is not a DWORD
	errWrongType = errors.New("registry value is not a DWORD")
)

// RegistryManager handles DWORD reads and writes under HKLM/HKCU
type RegistryManager struct {
	api    registryAPI
	logger *zap.Logger
}

// NewRegistryManager creates a RegistryManager bound to the platform's
// registry implementation
func NewRegistryManager(logger *zap.Logger) *RegistryManager {
	return &RegistryManager{api: newRegistryAPI(), logger: logger}
}

func newRegistryManagerWithAPI(api registryAPI, logger *zap.Logger) *RegistryManager {
	return &RegistryManager{api: api, logger: logger}
}

// Get reads the parameter's DWORD. Missing key or value maps to Absent;
// a non-DWORD type or any other failure maps to QueryError.
func (m *RegistryManager) Get(p types.Parameter) types.ObservedValue {
	v, err := m.api.ReadDWORD(p.RegistryRoot, p.RegistryPath, p.RegistryValue)
	switch {
	case err == nil:
		return types.Present(p.Key, strconv.FormatUint(uint64(v), 10))
	case errors.Is(err, errValueNotSet):
		return types.Absent(p.Key)
	case errors.Is(err, errWrongType):
		return types.QueryError(p.Key, err.Error())
	case errors.Is(err, types.ErrBackendUnavailable):
		return types.QueryError(p.Key, "registry access is Windows-only")
	default:
		m.logger.Warn("registry read failed",
			zap.String("key", p.Key),
			zap.String("path", p.RegistryPath),
			zap.Error(err))
		return types.QueryError(p.Key, err.Error())
	}
}

// Set writes the parameter's DWORD, creating the key if needed. A value
// that does not coerce to an integer is an error result, not a panic.
func (m *RegistryManager) Set(p types.Parameter, value string) types.Result {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return types.FailResult(fmt.Sprintf("value for %s must be an integer (got %q)", p.RegistryValue, value))
	}

	if err := m.api.WriteDWORD(p.RegistryRoot, p.RegistryPath, p.RegistryValue, uint32(n)); err != nil {
		m.logger.Warn("registry write failed",
			zap.String("key", p.Key),
			zap.String("path", p.RegistryPath),
			zap.Error(err))
		return types.FailResult(fmt.Sprintf("failed to set %s\\%s\\%s: %v", p.RegistryRoot, p.RegistryPath, p.RegistryValue, err))
	}

	m.logger.Debug("registry set",
		zap.String("key", p.Key),
		zap.String("value", value))
	return types.OKResult(fmt.Sprintf("%s\\%s\\%s = %s (DWORD)", p.RegistryRoot, p.RegistryPath, p.RegistryValue, value))
}

// Unset deletes the parameter's value, restoring the OS default policy.
// Deleting a value that is already gone succeeds.
func (m *RegistryManager) Unset(p types.Parameter) types.Result {
	err := m.api.DeleteValue(p.RegistryRoot, p.RegistryPath, p.RegistryValue)
	if err != nil && !errors.Is(err, errValueNotSet) {
		return types.FailResult(fmt.Sprintf("failed to delete %s\\%s\\%s: %v", p.RegistryRoot, p.RegistryPath, p.RegistryValue, err))
	}
	return types.OKResult(fmt.Sprintf("%s deleted (restored to OS default)", p.RegistryValue))
}
