package service

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"github.com/ghosthack3r/wintune/internal/shared/utils"
)

// HistoryService keeps an append-only journal of tuning operations
type HistoryService struct {
	historyDir string
	mu         sync.Mutex
	logger     *zap.Logger
	lastApply  *LastApplyInfo
}

// HistoryEntry is one journal line
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"` // "backup", "apply", "restore"
	Profile   string    `json:"profile,omitempty"`
	Success   bool      `json:"success"`
	Succeeded int       `json:"succeeded,omitempty"`
	Failed    int       `json:"failed,omitempty"`
}

// LastApplyInfo describes the most recent successful apply
type LastApplyInfo struct {
	Profile   string    `json:"profile"`
	AppliedAt time.Time `json:"applied_at"`
}

// NewHistoryService creates a HistoryService rooted at historyDir
func NewHistoryService(historyDir string, logger *zap.Logger) (*HistoryService, error) {
	s := &HistoryService{
		historyDir: historyDir,
		logger:     logger,
	}

	if err := utils.EnsureDir(historyDir); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	s.loadLastApply()
	return s, nil
}

// RecordBackup records a snapshot capture
func (s *HistoryService) RecordBackup(entryCount int) {
	s.record(&HistoryEntry{
		Timestamp: time.Now().UTC(),
		Action:    "backup",
		Success:   true,
		Succeeded: entryCount,
	})
}

// RecordApply records a profile apply and its per-entry tally
func (s *HistoryService) RecordApply(profile string, report *types.Report) {
	entry := &HistoryEntry{
		Timestamp: time.Now().UTC(),
		Action:    "apply",
		Profile:   profile,
		Success:   report.AllOK(),
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
	}
	s.record(entry)

	if entry.Success {
		s.mu.Lock()
		s.lastApply = &LastApplyInfo{Profile: profile, AppliedAt: entry.Timestamp}
		s.mu.Unlock()
	}
}

// RecordRestore records a restore and its per-entry tally
func (s *HistoryService) RecordRestore(report *types.Report) {
	s.record(&HistoryEntry{
		Timestamp: time.Now().UTC(),
		Action:    "restore",
		Success:   report.AllOK(),
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
	})
}

// GetLastApply returns the most recent successful apply, or nil
func (s *HistoryService) GetLastApply() *LastApplyInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastApply
}

// GetRecentEntries returns up to limit entries, newest first
func (s *HistoryService) GetRecentEntries(limit int) ([]*HistoryEntry, error) {
	file, err := os.Open(s.journalPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []*HistoryEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry HistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// a torn write must not poison the whole journal
			continue
		}
		entries = append(entries, &entry)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *HistoryService) record(entry *HistoryEntry) {
	entry.ID = entryID(entry)
	if err := s.appendEntry(entry); err != nil {
		s.logger.Error("failed to record history entry",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

func (s *HistoryService) appendEntry(entry *HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.journalPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = file.WriteString(string(data) + "\n")
	return err
}

func entryID(entry *HistoryEntry) string {
	return utils.HashString(fmt.Sprintf("%s/%s/%d",
		entry.Action, entry.Profile, entry.Timestamp.UnixNano()))[:12]
}

func (s *HistoryService) journalPath() string {
	return filepath.Join(s.historyDir, "journal.jsonl")
}

func (s *HistoryService) loadLastApply() {
	entries, err := s.GetRecentEntries(100)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.Action == "apply" && entry.Success {
			s.lastApply = &LastApplyInfo{Profile: entry.Profile, AppliedAt: entry.Timestamp}
			return
		}
	}
}
