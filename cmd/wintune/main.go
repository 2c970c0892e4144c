// Package main provides the CLI entry point for wintune
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ghosthack3r/wintune/internal/server/adapter"
	"github.com/ghosthack3r/wintune/internal/server/api"
	"github.com/ghosthack3r/wintune/internal/server/catalog"
	"github.com/ghosthack3r/wintune/internal/server/service"
	"github.com/ghosthack3r/wintune/internal/shared/config"
	"github.com/ghosthack3r/wintune/internal/shared/types"
	"github.com/ghosthack3r/wintune/internal/shared/utils"
	"github.com/ghosthack3r/wintune/pkg/version"
)

var (
	rootCmd = &cobra.Command{
		Use:   "wintune",
		Short: "Windows host tuning with snapshot and restore",
		Long: `Wintune applies named tuning profiles to a Windows host and can always
take it back to where it started:
- TCP registry parameters, netsh global and supplemental settings
- Power plan, SysMain service start mode, game mode switches
- Automatic pre-apply snapshot, explicit backup and restore
- Optional HTTP API server for remote management`,
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start the wintune HTTP API server",
		RunE:  runServer,
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Show the current value of every managed parameter",
		RunE:  runQuery,
	}

	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the current state as the restore point",
		RunE:  runBackup,
	}

	applyCmd = &cobra.Command{
		Use:   "apply <profile>",
		Short: "Apply a tuning profile (snapshots the current state first)",
		Args:  cobra.ExactArgs(1),
		RunE:  runApply,
	}

	restoreCmd = &cobra.Command{
		Use:   "restore",
		Short: "Bring every parameter back to its snapshot state",
		RunE:  runRestore,
	}

	profilesCmd = &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in tuning profiles",
		RunE:  runProfiles,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetInfo().String())
		},
	}

	flagConfigFile     string
	flagStateDir       string
	flagCommandTimeout int

	// server flags
	serverAPIKey       string
	serverListen       string
	serverReadTimeout  int
	serverWriteTimeout int
	serverRateLimit    int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "Directory for snapshot and history storage")
	rootCmd.PersistentFlags().IntVar(&flagCommandTimeout, "command-timeout", 0, "Per-tool timeout in seconds")

	serverCmd.Flags().StringVar(&serverAPIKey, "api-key", "", "API key for authentication (required)")
	serverCmd.Flags().StringVar(&serverListen, "listen", "", "Address to listen on")
	serverCmd.Flags().IntVar(&serverReadTimeout, "read-timeout", 0, "HTTP read timeout in seconds")
	serverCmd.Flags().IntVar(&serverWriteTimeout, "write-timeout", 0, "HTTP write timeout in seconds")
	serverCmd.Flags().IntVar(&serverRateLimit, "rate-limit", 0, "Authenticated requests per client per minute")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then explicit flags.
func loadConfig() (*config.ServerConfig, error) {
	cfg := config.DefaultServerConfig()

	if flagConfigFile != "" {
		if err := cfg.LoadFile(flagConfigFile); err != nil {
			return nil, err
		}
	}

	if flagStateDir != "" {
		cfg.StateDir = flagStateDir
	}
	if flagCommandTimeout > 0 {
		cfg.CommandTimeout = flagCommandTimeout
	}
	if serverAPIKey != "" {
		cfg.APIKey = serverAPIKey
	}
	if serverListen != "" {
		cfg.Listen = serverListen
	}
	if serverReadTimeout > 0 {
		cfg.ReadTimeout = serverReadTimeout
	}
	if serverWriteTimeout > 0 {
		cfg.WriteTimeout = serverWriteTimeout
	}
	if serverRateLimit > 0 {
		cfg.RateLimit = serverRateLimit
	}

	return cfg, nil
}

type app struct {
	cfg      *config.ServerConfig
	catalog  *catalog.Catalog
	profiles *catalog.Registry
	engine   *service.TweakEngine
	history  *service.HistoryService
	sysInfo  *adapter.SystemInfoManager
	logger   *zap.Logger
}

// buildApp wires the catalog, adapters and engine together
func buildApp(logger *zap.Logger) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	c, r, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("catalog failed validation: %w", err)
	}

	runner := adapter.NewRunner(time.Duration(cfg.CommandTimeout)*time.Second, logger)
	backends := adapter.NewSystemAdapter(runner, logger)

	store := service.NewSnapshotStore(cfg.GetSnapshotPath())
	history, err := service.NewHistoryService(cfg.GetHistoryDir(), logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		catalog:  c,
		profiles: r,
		engine:   service.NewTweakEngine(c, r, store, history, backends, logger),
		history:  history,
		sysInfo:  backends.SysInfo,
		logger:   logger,
	}, nil
}

// withStateLock runs fn holding the cross-process state lock, so two wintune
// invocations cannot interleave their writes.
func (a *app) withStateLock(fn func() error) error {
	if err := utils.EnsureDir(a.cfg.StateDir); err != nil {
		return err
	}

	lock := utils.NewFileLock(a.cfg.GetLockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire state lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another wintune operation is in progress")
	}
	defer lock.Unlock()

	return fn()
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer logger.Sync()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	if a.cfg.APIKey == "" {
		return fmt.Errorf("an api key is required in server mode (--api-key or config file)")
	}

	logger.Info("starting wintune server",
		zap.String("version", version.Version),
		zap.String("listen", a.cfg.Listen),
		zap.String("state_dir", a.cfg.StateDir))

	server := api.NewServer(a.cfg, a.engine, a.catalog, a.profiles, a.history, a.sysInfo, logger)

	// the lock is held for the server's whole lifetime, so a concurrent
	// CLI invocation cannot interleave with API-triggered writes
	return a.withStateLock(func() error {
		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			logger.Info("shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Stop(ctx); err != nil {
				logger.Error("error during shutdown", zap.Error(err))
			}
		}()

		return server.Start()
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer logger.Sync()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}

	snap := a.engine.QuerySnapshot()
	for _, p := range a.catalog.Parameters() {
		v, _ := snap.Lookup(p.Key)
		switch v.State {
		case types.StatePresent:
			fmt.Printf("%-22s %s\n", p.Key, v.Value)
		case types.StateAbsent:
			fmt.Printf("%-22s (not configured)\n", p.Key)
		default:
			fmt.Printf("%-22s (query failed: %s)\n", p.Key, v.Detail)
		}
	}
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer logger.Sync()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}

	return a.withStateLock(func() error {
		snap, err := a.engine.Backup()
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot saved (%d parameters, taken %s)\n",
			len(snap.Entries), snap.TakenAt.Format(time.RFC3339))
		return nil
	})
}

func runApply(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer logger.Sync()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}

	return a.withStateLock(func() error {
		report, err := a.engine.ApplyProfile(args[0])
		if err != nil {
			return err
		}
		printReport(report)
		if !report.AllOK() {
			return fmt.Errorf("%d of %d entries failed", report.Failed(), len(report.Entries))
		}
		return nil
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer logger.Sync()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}

	return a.withStateLock(func() error {
		report, err := a.engine.Restore()
		if err != nil {
			return err
		}
		printReport(report)
		if !report.AllOK() {
			return fmt.Errorf("%d of %d entries failed", report.Failed(), len(report.Entries))
		}
		return nil
	})
}

func runProfiles(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer logger.Sync()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}

	for _, m := range a.profiles.List() {
		fmt.Printf("%-12s %2d entries  %s\n", m.Name, m.EntryCount, m.Description)
	}
	return nil
}

func printReport(r *types.Report) {
	for _, e := range r.Entries {
		mark := "ok"
		switch e.Outcome {
		case types.OutcomeFailed:
			mark = "FAILED"
		case types.OutcomeSkipped:
			mark = "skipped"
		}

		line := fmt.Sprintf("%-22s %-6s %s", e.Key, e.Action, mark)
		if e.Outcome == types.OutcomeSuccess && e.Action == types.ActionSet {
			line += " -> " + e.AppliedValue
		}
		if e.Detail != "" {
			line += "  (" + e.Detail + ")"
		}
		fmt.Println(line)
	}

	fmt.Printf("\n%s: %d ok, %d failed, %d entries total\n",
		r.Operation, r.Succeeded(), r.Failed(), len(r.Entries))
}

func createLogger() *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// stderr only, stdout is reserved for command output
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		zap.InfoLevel,
	)

	return zap.New(core)
}
