// Package service implements the snapshot, apply and restore flows on top of
// the backend adapters.
package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ghosthack3r/wintune/internal/server/catalog"
	"github.com/ghosthack3r/wintune/internal/shared/types"
)

// Backends is the write/read surface the engine drives. A pass begins with
// BeginPass so adapters can drop any per-pass caches.
type Backends interface {
	BeginPass()
	Get(p types.Parameter) types.ObservedValue
	Set(p types.Parameter, value string) types.Result
	Unset(p types.Parameter) types.Result
}

// TweakEngine orchestrates query, backup, apply and restore. Mutating
// operations are best effort: one rejected write never aborts the rest, the
// report carries every outcome.
type TweakEngine struct {
	catalog  *catalog.Catalog
	profiles *catalog.Registry
	store    *SnapshotStore
	history  *HistoryService
	backends Backends
	logger   *zap.Logger
	now      func() time.Time
}

// NewTweakEngine creates a TweakEngine
func NewTweakEngine(c *catalog.Catalog, r *catalog.Registry, store *SnapshotStore, history *HistoryService, backends Backends, logger *zap.Logger) *TweakEngine {
	return &TweakEngine{
		catalog:  c,
		profiles: r,
		store:    store,
		history:  history,
		backends: backends,
		logger:   logger,
		now:      time.Now,
	}
}

// QuerySnapshot reads every catalog parameter in declaration order and
// returns the observations without persisting anything. A failed read is
// recorded as a query_error entry, never dropped.
func (e *TweakEngine) QuerySnapshot() *types.Snapshot {
	snap := types.NewSnapshot(e.now())

	e.backends.BeginPass()
	for _, p := range e.catalog.Parameters() {
		v := e.backends.Get(p)
		if v.State == types.StateQueryError {
			e.logger.Warn("parameter query failed",
				zap.String("key", p.Key),
				zap.String("detail", v.Detail))
		}
		snap.Record(v)
	}
	return snap
}

// Backup captures the current state and persists it as the restore point,
// replacing any previous snapshot.
func (e *TweakEngine) Backup() (*types.Snapshot, error) {
	snap := e.QuerySnapshot()
	if err := e.store.Save(snap); err != nil {
		return nil, err
	}

	e.history.RecordBackup(len(snap.Entries))
	e.logger.Info("saved snapshot",
		zap.Time("taken_at", snap.TakenAt),
		zap.Int("entries", len(snap.Entries)))
	return snap, nil
}

// ApplyProfile backs up the current state and then writes every profile
// entry. The profile is resolved before any side effect, so an unknown name
// leaves the system untouched. A failed backup aborts the apply.
func (e *TweakEngine) ApplyProfile(name string) (*types.Report, error) {
	prof, err := e.profiles.Get(name)
	if err != nil {
		return nil, err
	}

	snap, err := e.Backup()
	if err != nil {
		return nil, fmt.Errorf("backup before apply failed: %w", err)
	}

	report := &types.Report{
		Operation:  "apply",
		Profile:    prof.Name,
		StartedAt:  e.now(),
		SnapshotAt: snap.TakenAt,
	}

	e.backends.BeginPass()
	for _, entry := range prof.Entries {
		p, err := e.catalog.Get(entry.Key)
		if err != nil {
			// catalog.Load validates profiles, so this is a defect
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		report.Add(e.set(p, entry.Value))
	}

	e.history.RecordApply(prof.Name, report)
	e.logger.Info("applied profile",
		zap.String("profile", prof.Name),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()))
	return report, nil
}

// Restore brings every catalog parameter back to its snapshot state. An
// entry observed present is set, one observed absent is unset, and one whose
// read failed at backup time falls back to the default profile's value. With
// no snapshot on disk, or an unreadable one, the default profile is applied
// instead, without taking a backup first.
func (e *TweakEngine) Restore() (*types.Report, error) {
	snap, err := e.store.Load()
	if errors.Is(err, types.ErrSnapshotNotFound) {
		return e.restoreDefaults()
	}
	if errors.Is(err, types.ErrSnapshotCorrupt) {
		e.logger.Warn("snapshot unreadable, restoring documented defaults", zap.Error(err))
		return e.restoreDefaults()
	}
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		Operation:  "restore",
		StartedAt:  e.now(),
		SnapshotAt: snap.TakenAt,
	}
	def := e.profiles.Default()

	e.backends.BeginPass()
	for _, p := range e.catalog.Parameters() {
		v, ok := snap.Lookup(p.Key)
		switch {
		case ok && v.State == types.StatePresent:
			report.Add(e.set(p, v.Value))
		case ok && v.State == types.StateAbsent:
			report.Add(e.unset(p))
		default:
			// read failed at backup time, or the key was added since
			report.Add(e.restoreFallback(p, def))
		}
	}

	e.history.RecordRestore(report)
	e.logger.Info("restored snapshot",
		zap.Time("taken_at", snap.TakenAt),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()))
	return report, nil
}

// restoreDefaults applies the default profile when no snapshot exists
func (e *TweakEngine) restoreDefaults() (*types.Report, error) {
	e.logger.Warn("no snapshot on disk, restoring documented defaults")

	def := e.profiles.Default()
	report := &types.Report{
		Operation: "restore",
		Profile:   def.Name,
		StartedAt: e.now(),
	}

	e.backends.BeginPass()
	for _, entry := range def.Entries {
		p, err := e.catalog.Get(entry.Key)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		report.Add(e.set(p, entry.Value))
	}

	e.history.RecordRestore(report)
	return report, nil
}

func (e *TweakEngine) restoreFallback(p types.Parameter, def types.Profile) types.EntryResult {
	value, ok := def.Lookup(p.Key)
	if !ok {
		return types.EntryResult{
			Key:     p.Key,
			Action:  types.ActionSet,
			Outcome: types.OutcomeSkipped,
			Detail:  "no snapshot entry and no default value",
		}
	}
	res := e.set(p, value)
	if res.Outcome == types.OutcomeSuccess {
		res.Detail = "snapshot entry unusable, wrote default"
	}
	return res
}

func (e *TweakEngine) set(p types.Parameter, value string) types.EntryResult {
	res := e.backends.Set(p, value)
	out := types.EntryResult{
		Key:          p.Key,
		Action:       types.ActionSet,
		AppliedValue: value,
		Detail:       res.Detail,
	}
	if res.OK {
		out.Outcome = types.OutcomeSuccess
	} else {
		out.Outcome = types.OutcomeFailed
		e.logger.Warn("write failed",
			zap.String("key", p.Key),
			zap.String("value", value),
			zap.String("detail", res.Detail))
	}
	return out
}

func (e *TweakEngine) unset(p types.Parameter) types.EntryResult {
	res := e.backends.Unset(p)
	out := types.EntryResult{
		Key:    p.Key,
		Action: types.ActionUnset,
		Detail: res.Detail,
	}
	if res.OK {
		out.Outcome = types.OutcomeSuccess
	} else {
		out.Outcome = types.OutcomeFailed
		e.logger.Warn("unset failed",
			zap.String("key", p.Key),
			zap.String("detail", res.Detail))
	}
	return out
}
