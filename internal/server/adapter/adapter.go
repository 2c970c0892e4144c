package adapter

import (
	"fmt"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

// SystemAdapter aggregates the per-backend managers and routes a Parameter
// to the one its Backend names. The engine only sees this surface.
type SystemAdapter struct {
	Registry *RegistryManager
	Netsh    *NetshManager
	Service  *ServiceManager
	Power    *PowerPlanManager
	SysInfo  *SystemInfoManager
	logger   *zap.Logger
}

// NewSystemAdapter creates a SystemAdapter with all managers sharing one
// runner
func NewSystemAdapter(runner Runner, logger *zap.Logger) *SystemAdapter {
	return &SystemAdapter{
		Registry: NewRegistryManager(logger),
		Netsh:    NewNetshManager(runner, logger),
		Service:  NewServiceManager(runner, logger),
		Power:    NewPowerPlanManager(runner, logger),
		SysInfo:  NewSystemInfoManager(logger),
		logger:   logger,
	}
}

// BeginPass drops any cached tool output so a fresh query pass re-reads
// every backend
func (a *SystemAdapter) BeginPass() {
	a.Netsh.Reset()
}

// Get reads one parameter from its backend
func (a *SystemAdapter) Get(p types.Parameter) types.ObservedValue {
	switch p.Backend {
	case types.BackendRegistry:
		return a.Registry.Get(p)
	case types.BackendNetshGlobal, types.BackendNetshSupplemental:
		return a.Netsh.Get(p)
	case types.BackendServiceState:
		return a.Service.Get(p)
	case types.BackendPowerPlan:
		return a.Power.Get(p)
	default:
		return types.QueryError(p.Key, fmt.Sprintf("unknown backend %q", p.Backend))
	}
}

// Set writes one parameter to its backend
func (a *SystemAdapter) Set(p types.Parameter, value string) types.Result {
	switch p.Backend {
	case types.BackendRegistry:
		return a.Registry.Set(p, value)
	case types.BackendNetshGlobal, types.BackendNetshSupplemental:
		return a.Netsh.Set(p, value)
	case types.BackendServiceState:
		return a.Service.Set(p, value)
	case types.BackendPowerPlan:
		return a.Power.Set(p, value)
	default:
		return types.FailResult(fmt.Sprintf("unknown backend %q", p.Backend))
	}
}

// Unset reverses one parameter to its backend's own notion of "not
// configured": a registry delete, or the documented neutral token for
// backends without a true unset.
func (a *SystemAdapter) Unset(p types.Parameter) types.Result {
	switch p.Backend {
	case types.BackendRegistry:
		return a.Registry.Unset(p)
	case types.BackendNetshGlobal, types.BackendNetshSupplemental:
		return a.Netsh.Unset(p)
	case types.BackendServiceState:
		return a.Service.Unset(p)
	case types.BackendPowerPlan:
		return a.Power.Unset(p)
	default:
		return types.FailResult(fmt.Sprintf("unknown backend %q", p.Backend))
	}
}
