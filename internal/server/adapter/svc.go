package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

// Service start modes as the catalog spells them
const (
	StartAuto     = "auto"
	StartDemand   = "demand"
	StartDisabled = "disabled"
)

var startTypeRe = regexp.MustCompile(`(?im)^\s*START_TYPE\s*:\s*(\d+)`)

// startTypeNames maps sc.exe START_TYPE codes to catalog tokens
var startTypeNames = map[string]string{
	"2": StartAuto,
	"3": StartDemand,
	"4": StartDisabled,
}

// ServiceManager handles service start-mode queries and changes via sc.exe
type ServiceManager struct {
	runner Runner
	logger *zap.Logger
}

// NewServiceManager creates a new ServiceManager
func NewServiceManager(runner Runner, logger *zap.Logger) *ServiceManager {
	return &ServiceManager{runner: runner, logger: logger}
}

// Get queries the service's configured start mode with "sc qc"
func (m *ServiceManager) Get(p types.Parameter) types.ObservedValue {
	res, err := m.runner.Run(context.Background(), "sc", "qc", p.ServiceName)
	if err != nil {
		return types.QueryError(p.Key, err.Error())
	}
	if res.ExitCode != 0 {
		return types.QueryError(p.Key, fmt.Sprintf("sc qc %s exited with code %d: %s",
			p.ServiceName, res.ExitCode, truncate(strings.TrimSpace(res.Output), 120)))
	}

	match := startTypeRe.FindStringSubmatch(res.Output)
	if match == nil {
		return types.QueryError(p.Key, "START_TYPE not matched in sc output")
	}

	mode, ok := startTypeNames[match[1]]
	if !ok {
		// BOOT_START / SYSTEM_START drivers are outside the tunable set
		return types.QueryError(p.Key, fmt.Sprintf("unexpected START_TYPE %s", match[1]))
	}
	return types.Present(p.Key, mode)
}

// Set reconfigures the start mode and, when enabling, also starts the
// service. Both outcomes are reported; a failed config fails the entry,
// a failed start is carried in the detail.
func (m *ServiceManager) Set(p types.Parameter, mode string) types.Result {
	if !p.AllowsValue(mode) {
		return types.FailResult(fmt.Sprintf("start mode %q is not allowed for %s", mode, p.ServiceName))
	}

	// sc parses "start= auto" as two arguments
	res, err := m.runner.Run(context.Background(), "sc", "config", p.ServiceName, "start=", mode)
	if err != nil {
		return types.FailResult(err.Error())
	}
	if res.ExitCode != 0 {
		return types.FailResult(fmt.Sprintf("sc config failed (code %d): %s",
			res.ExitCode, truncate(strings.TrimSpace(res.Output), 120)))
	}

	detail := fmt.Sprintf("start mode set to %s", mode)
	if mode == StartAuto {
		startRes, startErr := m.runner.Run(context.Background(), "sc", "start", p.ServiceName)
		switch {
		case startErr != nil:
			detail += fmt.Sprintf("; start failed: %v", startErr)
		case startRes.ExitCode != 0 && !strings.Contains(strings.ToLower(startRes.Output), "already"):
			detail += fmt.Sprintf("; start failed (code %d)", startRes.ExitCode)
		default:
			detail += "; service started"
		}
	}

	if mode == StartDisabled {
		// Best effort stop; a service that refuses to stop still counts
		// as reconfigured.
		if stopRes, stopErr := m.runner.Run(context.Background(), "sc", "stop", p.ServiceName); stopErr == nil && stopRes.ExitCode == 0 {
			detail += "; service stopped"
		}
	}

	m.logger.Debug("service reconfigured",
		zap.String("service", p.ServiceName),
		zap.String("mode", mode))
	return types.OKResult(detail)
}

// Unset returns the service to the catalog default start mode. The service
// control manager has no "not configured" state to fall back to.
func (m *ServiceManager) Unset(p types.Parameter) types.Result {
	return m.Set(p, p.Default)
}
