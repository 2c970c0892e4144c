// Package handlers implements the HTTP endpoint handlers
package handlers

import (
	"errors"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ghosthack3r/wintune/internal/server/catalog"
	"github.com/ghosthack3r/wintune/internal/server/service"
	"github.com/ghosthack3r/wintune/internal/shared/types"
)

// TweakHandler exposes the query, backup, apply and restore flows. The
// engine does no locking of its own, so mu serializes the mutating
// endpoints across request goroutines.
type TweakHandler struct {
	engine   *service.TweakEngine
	catalog  *catalog.Catalog
	profiles *catalog.Registry
	history  *service.HistoryService
	mu       sync.Mutex
}

// NewTweakHandler creates a new TweakHandler
func NewTweakHandler(engine *service.TweakEngine, c *catalog.Catalog, r *catalog.Registry, history *service.HistoryService) *TweakHandler {
	return &TweakHandler{
		engine:   engine,
		catalog:  c,
		profiles: r,
		history:  history,
	}
}

// ListParams handles GET /params: catalog metadata plus live observed values
func (h *TweakHandler) ListParams(c *gin.Context) {
	snap := h.engine.QuerySnapshot()

	type paramView struct {
		types.Parameter
		Observed types.ObservedValue `json:"observed"`
	}

	params := h.catalog.Parameters()
	out := make([]paramView, 0, len(params))
	for _, p := range params {
		v, _ := snap.Lookup(p.Key)
		out = append(out, paramView{Parameter: p, Observed: v})
	}

	success(c, gin.H{"params": out})
}

// ListProfiles handles GET /profiles
func (h *TweakHandler) ListProfiles(c *gin.Context) {
	success(c, gin.H{"profiles": h.profiles.List()})
}

// GetProfile handles GET /profiles/:name
func (h *TweakHandler) GetProfile(c *gin.Context) {
	name := c.Param("name")
	prof, err := h.profiles.Get(name)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			notFound(c, "profile not found")
			return
		}
		internalError(c, err.Error())
		return
	}
	success(c, prof)
}

// Backup handles POST /backup
func (h *TweakHandler) Backup(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.engine.Backup()
	if err != nil {
		internalError(c, err.Error())
		return
	}
	success(c, snap)
}

// applyRequest is the body of POST /apply
type applyRequest struct {
	Profile string `json:"profile" binding:"required"`
}

// Apply handles POST /apply
func (h *TweakHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.mu.Lock()
	report, err := h.engine.ApplyProfile(req.Profile)
	h.mu.Unlock()
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			notFound(c, "profile not found")
			return
		}
		internalError(c, err.Error())
		return
	}
	success(c, report)
}

// Restore handles POST /restore
func (h *TweakHandler) Restore(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	report, err := h.engine.Restore()
	if err != nil {
		internalError(c, err.Error())
		return
	}
	success(c, report)
}

// History handles GET /history
func (h *TweakHandler) History(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.history.GetRecentEntries(limit)
	if err != nil {
		internalError(c, err.Error())
		return
	}

	success(c, gin.H{
		"entries":    entries,
		"last_apply": h.history.GetLastApply(),
	})
}

func success(c *gin.Context, data interface{}) {
	c.JSON(200, gin.H{"success": true, "data": data})
}

func badRequest(c *gin.Context, message string) {
	errorResponse(c, 400, types.ErrCodeInvalidRequest, message)
}

func notFound(c *gin.Context, message string) {
	errorResponse(c, 404, types.ErrCodeProfileNotFound, message)
}

func internalError(c *gin.Context, message string) {
	errorResponse(c, 500, types.ErrCodeInternalError, message)
}

func errorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, gin.H{"success": false, "error": gin.H{"code": code, "message": message}})
}
