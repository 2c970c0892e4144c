package adapter

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"
)

// HostInfo is the machine summary shown by the CLI and the API dashboard
// header
type HostInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	KernelVersion string `json:"kernel_version"`
	UptimeSeconds uint64 `json:"uptime_seconds"`
}

// SystemInfoManager collects host information
type SystemInfoManager struct {
	logger *zap.Logger
}

// NewSystemInfoManager creates a new SystemInfoManager
func NewSystemInfoManager(logger *zap.Logger) *SystemInfoManager {
	return &SystemInfoManager{logger: logger}
}

// GetHostInfo collects best-effort host information; individual probe
// failures degrade to empty fields rather than erroring the call.
func (m *SystemInfoManager) GetHostInfo() *HostInfo {
	info := &HostInfo{OS: runtime.GOOS}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	hi, err := host.Info()
	if err != nil {
		m.logger.Warn("failed to collect host info", zap.Error(err))
		return info
	}

	info.Platform = hi.Platform
	if hi.PlatformVersion != "" {
		info.Platform = hi.Platform + " " + hi.PlatformVersion
	}
	info.KernelVersion = hi.KernelVersion
	info.UptimeSeconds = hi.Uptime

	return info
}
