package adapter

import (
	"errors"
	"testing"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	values    map[string]uint32
	wrongType map[string]bool
	failWith  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		values:    make(map[string]uint32),
		wrongType: make(map[string]bool),
	}
}

func regKey(root types.RegistryRoot, path, name string) string {
	return string(root) + `\` + path + `\` + name
}

func (f *fakeRegistry) ReadDWORD(root types.RegistryRoot, path, name string) (uint32, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	k := regKey(root, path, name)
	if f.wrongType[k] {
		return 0, errWrongType
	}
	v, ok := f.values[k]
	if !ok {
		return 0, errValueNotSet
	}
	return v, nil
}

func (f *fakeRegistry) WriteDWORD(root types.RegistryRoot, path, name string, value uint32) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.values[regKey(root, path, name)] = value
	return nil
}

func (f *fakeRegistry) DeleteValue(root types.RegistryRoot, path, name string) error {
	if f.failWith != nil {
		return f.failWith
	}
	k := regKey(root, path, name)
	if _, ok := f.values[k]; !ok {
		return errValueNotSet
	}
	delete(f.values, k)
	return nil
}

var ttlParam = types.Parameter{
	Key:           "DefaultTTL",
	Backend:       types.BackendRegistry,
	Kind:          types.ValueInt,
	Default:       "128",
	RegistryRoot:  types.RootLocalMachine,
	RegistryPath:  `SYSTEM\CurrentControlSet\Services\Tcpip\Parameters`,
	RegistryValue: "DefaultTTL",
}

func TestRegistryGetPresent(t *testing.T) {
	api := newFakeRegistry()
	api.values[regKey(ttlParam.RegistryRoot, ttlParam.RegistryPath, ttlParam.RegistryValue)] = 128
	m := newRegistryManagerWithAPI(api, zap.NewNop())

	v := m.Get(ttlParam)
	if v.State != types.StatePresent || v.Value != "128" {
		t.Errorf("Get = %s/%q, want present/128", v.State, v.Value)
	}
}

func TestRegistryGetAbsent(t *testing.T) {
	m := newRegistryManagerWithAPI(newFakeRegistry(), zap.NewNop())

	v := m.Get(ttlParam)
	if v.State != types.StateAbsent {
		t.Errorf("State = %s, want absent for a missing value", v.State)
	}
}

func TestRegistryGetWrongType(t *testing.T) {
	api := newFakeRegistry()
	api.wrongType[regKey(ttlParam.RegistryRoot, ttlParam.RegistryPath, ttlParam.RegistryValue)] = true
	m := newRegistryManagerWithAPI(api, zap.NewNop())

	v := m.Get(ttlParam)
	if v.State != types.StateQueryError {
		t.Errorf("State = %s, want query_error for a non-DWORD value", v.State)
	}
}

func TestRegistryGetUnavailablePlatform(t *testing.T) {
	api := newFakeRegistry()
	api.failWith = types.ErrBackendUnavailable
	m := newRegistryManagerWithAPI(api, zap.NewNop())

	v := m.Get(ttlParam)
	if v.State != types.StateQueryError {
		t.Errorf("State = %s, want query_error when the backend is unavailable", v.State)
	}
}

func TestRegistrySetAndReadBack(t *testing.T) {
	api := newFakeRegistry()
	m := newRegistryManagerWithAPI(api, zap.NewNop())

	res := m.Set(ttlParam, "64")
	if !res.OK {
		t.Fatalf("Set failed: %s", res.Detail)
	}

	v := m.Get(ttlParam)
	if v.Value != "64" {
		t.Errorf("read back %q, want 64", v.Value)
	}
}

func TestRegistrySetCoercionFailure(t *testing.T) {
	m := newRegistryManagerWithAPI(newFakeRegistry(), zap.NewNop())

	res := m.Set(ttlParam, "normal")
	if res.OK {
		t.Error("Set must fail when the value does not coerce to an integer")
	}
}

func TestRegistryUnsetDeletesValue(t *testing.T) {
	api := newFakeRegistry()
	k := regKey(ttlParam.RegistryRoot, ttlParam.RegistryPath, ttlParam.RegistryValue)
	api.values[k] = 64
	m := newRegistryManagerWithAPI(api, zap.NewNop())

	if res := m.Unset(ttlParam); !res.OK {
		t.Fatalf("Unset failed: %s", res.Detail)
	}
	if _, ok := api.values[k]; ok {
		t.Error("value should be deleted after Unset")
	}

	// Unsetting an already-unset value still succeeds
	if res := m.Unset(ttlParam); !res.OK {
		t.Error("Unset of an absent value should succeed")
	}
}

func TestRegistryWriteRejected(t *testing.T) {
	api := newFakeRegistry()
	api.failWith = errors.New("access denied")
	m := newRegistryManagerWithAPI(api, zap.NewNop())

	if res := m.Set(ttlParam, "64"); res.OK {
		t.Error("Set should report failure when the write is rejected")
	}
}
