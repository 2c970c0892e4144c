package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

// Well-known power scheme GUIDs
const (
	BalancedPlanGUID = "381b4222-f694-41f0-9685-ff5bb260df2e"
	HighPerfPlanGUID = "8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c"
	UltimatePlanGUID = "e9a42b02-d5df-448d-aa00-03f14749eb61"
)

var planGUIDRe = regexp.MustCompile(`GUID:\s*([A-Fa-f0-9-]+)`)

// PowerPlanManager handles the active power scheme via powercfg
type PowerPlanManager struct {
	runner Runner
	logger *zap.Logger
}

// NewPowerPlanManager creates a new PowerPlanManager
func NewPowerPlanManager(runner Runner, logger *zap.Logger) *PowerPlanManager {
	return &PowerPlanManager{runner: runner, logger: logger}
}

// Get reads the active scheme GUID from "powercfg /getactivescheme"
func (m *PowerPlanManager) Get(p types.Parameter) types.ObservedValue {
	res, err := m.runner.Run(context.Background(), "powercfg", "/getactivescheme")
	if err != nil {
		return types.QueryError(p.Key, err.Error())
	}
	if res.ExitCode != 0 {
		return types.QueryError(p.Key, fmt.Sprintf("powercfg exited with code %d", res.ExitCode))
	}

	match := planGUIDRe.FindStringSubmatch(res.Output)
	if match == nil {
		return types.QueryError(p.Key, "GUID not matched in powercfg output")
	}
	return types.Present(p.Key, strings.ToLower(match[1]))
}

// Set activates the given scheme. A request for High Performance is
// upgraded to Ultimate Performance when the machine exposes it.
func (m *PowerPlanManager) Set(p types.Parameter, guid string) types.Result {
	guid = strings.ToLower(strings.TrimSpace(guid))
	if guid == HighPerfPlanGUID {
		guid = m.resolveHighPerf(guid)
	}

	res, err := m.runner.Run(context.Background(), "powercfg", "/setactive", guid)
	if err != nil {
		return types.FailResult(err.Error())
	}
	if res.ExitCode != 0 || outputIndicatesFailure(res.Output) {
		detail := strings.TrimSpace(res.Output)
		if detail == "" {
			detail = fmt.Sprintf("powercfg exited with code %d", res.ExitCode)
		}
		return types.FailResult(detail)
	}

	m.logger.Debug("power plan activated", zap.String("guid", guid))
	return types.OKResult(fmt.Sprintf("active power scheme set to %s", guid))
}

// Unset falls back to the parameter's default scheme (Balanced)
func (m *PowerPlanManager) Unset(p types.Parameter) types.Result {
	return m.Set(p, p.Default)
}

func (m *PowerPlanManager) resolveHighPerf(guid string) string {
	res, err := m.runner.Run(context.Background(), "powercfg", "/list")
	if err != nil || res.ExitCode != 0 {
		return guid
	}
	if strings.Contains(strings.ToLower(res.Output), UltimatePlanGUID) {
		m.logger.Debug("ultimate performance plan available, using it")
		return UltimatePlanGUID
	}
	return guid
}
