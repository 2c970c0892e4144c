package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ghosthack3r/wintune/internal/server/adapter"
)

// SystemHandler exposes host level information
type SystemHandler struct {
	sysInfo *adapter.SystemInfoManager
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(sysInfo *adapter.SystemInfoManager) *SystemHandler {
	return &SystemHandler{sysInfo: sysInfo}
}

// Host handles GET /host
func (h *SystemHandler) Host(c *gin.Context) {
	success(c, h.sysInfo.GetHostInfo())
}
