//go:build windows

package adapter

import (
	"errors"
	"fmt"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"golang.org/x/sys/windows/registry"
)

type windowsRegistry struct{}

func newRegistryAPI() registryAPI {
	return windowsRegistry{}
}

func rootKey(root types.RegistryRoot) (registry.Key, error) {
	switch root {
	case types.RootLocalMachine:
		return registry.LOCAL_MACHINE, nil
	case types.RootCurrentUser:
		return registry.CURRENT_USER, nil
	default:
		return 0, fmt.Errorf("unknown registry root %q", root)
	}
}

func (windowsRegistry) ReadDWORD(root types.RegistryRoot, path, name string) (uint32, error) {
	rk, err := rootKey(root)
	if err != nil {
		return 0, err
	}

	k, err := registry.OpenKey(rk, path, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, errValueNotSet
		}
		return 0, err
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, errValueNotSet
		}
		if errors.Is(err, registry.ErrUnexpectedType) {
			return 0, errWrongType
		}
		return 0, err
	}
	return uint32(v), nil
}

func (windowsRegistry) WriteDWORD(root types.RegistryRoot, path, name string, value uint32) error {
	rk, err := rootKey(root)
	if err != nil {
		return err
	}

	k, _, err := registry.CreateKey(rk, path, registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return err
	}
	defer k.Close()

	return k.SetDWordValue(name, value)
}

func (windowsRegistry) DeleteValue(root types.RegistryRoot, path, name string) error {
	rk, err := rootKey(root)
	if err != nil {
		return err
	}

	k, err := registry.OpenKey(rk, path, registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return errValueNotSet
		}
		return err
	}
	defer k.Close()

	if err := k.DeleteValue(name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return errValueNotSet
		}
		return err
	}
	return nil
}
