// Package catalog holds the fixed parameter and profile tables. Both are
// built once at startup and never mutated; adding a tunable or a profile is
// a data edit here, not a logic change elsewhere.
package catalog

import (
	"fmt"

	"github.com/ghosthack3r/wintune/internal/server/adapter"
	"github.com/ghosthack3r/wintune/internal/shared/types"
)

// Registry paths
const (
	tcpipParamsPath = `SYSTEM\CurrentControlSet\Services\Tcpip\Parameters`
	gameBarPath     = `Software\Microsoft\GameBar`
	gameConfigPath  = `System\GameConfigStore`
	gameDVRPath     = `SOFTWARE\Microsoft\Windows\CurrentVersion\GameDVR`
)

// Catalog is the ordered set of tunable parameters. Order matters only for
// deterministic report and log ordering.
type Catalog struct {
	params []types.Parameter
	index  map[string]types.Parameter
}

// Parameters returns every parameter in declaration order
func (c *Catalog) Parameters() []types.Parameter {
	out := make([]types.Parameter, len(c.params))
	copy(out, c.params)
	return out
}

// Get returns the parameter for key
func (c *Catalog) Get(key string) (types.Parameter, error) {
	p, ok := c.index[key]
	if !ok {
		return types.Parameter{}, fmt.Errorf("%w: %s", types.ErrUnknownParameter, key)
	}
	return p, nil
}

// Has reports whether key names a catalog parameter
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Len returns the number of parameters
func (c *Catalog) Len() int {
	return len(c.params)
}

func parameterTable() []types.Parameter {
	return []types.Parameter{
		{
			Key:           "DefaultTTL",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "128",
			Description:   "Default Time To Live for IP packets. Standard is 64 or 128.",
			RegistryRoot:  types.RootLocalMachine,
			RegistryPath:  tcpipParamsPath,
			RegistryValue: "DefaultTTL",
		},
		{
			Key:           "Tcp1323Opts",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "3",
			Description:   "RFC 1323 options (0=None, 1=WinScale, 2=Timestamps, 3=Both).",
			RegistryRoot:  types.RootLocalMachine,
			RegistryPath:  tcpipParamsPath,
			RegistryValue: "Tcp1323Opts",
		},
		{
			Key:           "SackOpts",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "1",
			Description:   "Selective Acknowledgement (1=Enabled, 0=Disabled).",
			RegistryRoot:  types.RootLocalMachine,
			RegistryPath:  tcpipParamsPath,
			RegistryValue: "SackOpts",
		},
		{
			Key:           "MaxDupAcks",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "2",
			Description:   "Duplicate ACKs before fast retransmit triggers.",
			RegistryRoot:  types.RootLocalMachine,
			RegistryPath:  tcpipParamsPath,
			RegistryValue: "MaxDupAcks",
		},
		{
			Key:          "autotuninglevel",
			Backend:      types.BackendNetshGlobal,
			Kind:         types.ValueEnum,
			Allowed:      []string{"normal", "restricted", "highlyrestricted", "disabled", "experimental", "default"},
			Default:      "normal",
			Description:  "TCP receive window auto-tuning level.",
			NetshSetting: "autotuninglevel",
			NetshField:   "Receive Window Auto-Tuning Level",
		},
		{
			Key:          "rss",
			Backend:      types.BackendNetshGlobal,
			Kind:         types.ValueEnum,
			Allowed:      []string{"enabled", "disabled", "default"},
			Default:      "enabled",
			Description:  "Receive-side scaling across CPUs.",
			NetshSetting: "rss",
			NetshField:   "Receive-Side Scaling State",
		},
		{
			Key:          "ecncapability",
			Backend:      types.BackendNetshGlobal,
			Kind:         types.ValueEnum,
			Allowed:      []string{"enabled", "disabled", "default"},
			Default:      "default",
			Description:  "Explicit Congestion Notification.",
			NetshSetting: "ecncapability",
			NetshField:   "ECN Capability",
		},
		{
			Key:          "timestamps",
			Backend:      types.BackendNetshGlobal,
			Kind:         types.ValueEnum,
			Allowed:      []string{"enabled", "disabled", "allowed", "default"},
			Default:      "default",
			Description:  "RFC 1323 timestamps (netsh global).",
			NetshSetting: "timestamps",
			NetshField:   "RFC 1323 Timestamps",
		},
		{
			Key:          "congestionprovider",
			Backend:      types.BackendNetshSupplemental,
			Kind:         types.ValueEnum,
			Allowed:      []string{"ctcp", "cubic", "newreno", "dctcp", "default"},
			Default:      "default",
			Description:  "TCP congestion control provider (internet template).",
			NetshSetting: "congestionprovider",
			NetshField:   "Congestion Control Provider",
		},
		{
			Key:         "SysMainStart",
			Backend:     types.BackendServiceState,
			Kind:        types.ValueEnum,
			Allowed:     []string{adapter.StartAuto, adapter.StartDemand, adapter.StartDisabled},
			Default:     adapter.StartAuto,
			Description: "Superfetch (SysMain) service start mode.",
			ServiceName: "SysMain",
		},
		{
			Key:         "ActivePowerScheme",
			Backend:     types.BackendPowerPlan,
			Kind:        types.ValueGUID,
			Default:     adapter.BalancedPlanGUID,
			Description: "Active power scheme GUID.",
		},
		{
			Key:           "AllowAutoGameMode",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "0",
			Description:   "Windows Game Mode auto activation.",
			RegistryRoot:  types.RootCurrentUser,
			RegistryPath:  gameBarPath,
			RegistryValue: "AllowAutoGameMode",
		},
		{
			Key:           "GameDVR_Enabled",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "0",
			Description:   "Game DVR capture state.",
			RegistryRoot:  types.RootCurrentUser,
			RegistryPath:  gameConfigPath,
			RegistryValue: "GameDVR_Enabled",
		},
		{
			Key:           "AppCaptureEnabled",
			Backend:       types.BackendRegistry,
			Kind:          types.ValueInt,
			Default:       "1",
			Description:   "Xbox Game Bar app capture.",
			RegistryRoot:  types.RootCurrentUser,
			RegistryPath:  gameDVRPath,
			RegistryValue: "AppCaptureEnabled",
		},
	}
}

// Load builds the catalog and profile registry and cross-validates them.
// A profile referencing an unknown key, or a target value an enum
// parameter does not allow, is a construction-time defect.
func Load() (*Catalog, *Registry, error) {
	params := parameterTable()

	c := &Catalog{
		params: params,
		index:  make(map[string]types.Parameter, len(params)),
	}
	for _, p := range params {
		if _, dup := c.index[p.Key]; dup {
			return nil, nil, fmt.Errorf("duplicate parameter key %q", p.Key)
		}
		c.index[p.Key] = p
	}

	r, err := newRegistry(c)
	if err != nil {
		return nil, nil, err
	}
	return c, r, nil
}
