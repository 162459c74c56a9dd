// Package main provides the CLI entrypoint for bmilog.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/bmilog/internal/app"
	"github.com/verte-zerg/bmilog/internal/config"
	"github.com/verte-zerg/bmilog/internal/historyui"
	"github.com/verte-zerg/bmilog/internal/logging"
	"github.com/verte-zerg/bmilog/internal/model"
	"github.com/verte-zerg/bmilog/internal/report"
	"github.com/verte-zerg/bmilog/internal/store"
	"github.com/verte-zerg/bmilog/internal/tui"
)

const (
	defaultBackend    = store.BackendJSON
	defaultLogLevel   = "info"
	defaultWindow     = 3
	defaultPlotHeight = 10
)

var (
	dataDir  string
	backend  string
	logLevel string

	addName   string
	addWeight string
	addHeight string

	historyName   string
	historyPlain  bool
	historyWindow int
	historyHeight int

	exportName   string
	exportOut    string
	exportFormat string

	clearName string
	clearYes  bool
)

// renameExport is swapped in tests to simulate a failed replace.
var renameExport = os.Rename

// stdinIsTerminal is swapped in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bmilog",
		Short:         "BMI calculator with per-person history",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runFormCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir(), "directory holding history and settings")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", defaultBackend, "storage backend (json or sqlite)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newThemeCmd())
	rootCmd.AddCommand(newPeopleCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// env holds the wired service for one command invocation.
type env struct {
	cfg    config.FileConfig
	store  store.Store
	svc    *app.Service
	logger *zap.Logger
}

func openEnv(cmd *cobra.Command) (*env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data-dir", &dataDir, fileCfg.Storage.Dir)
	applyStringConfig(cmd, "backend", &backend, fileCfg.Storage.Backend)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	logPath := config.DefaultLogPath()
	if fileCfg.Log.File != nil {
		logPath = *fileCfg.Log.File
	}
	logger, err := logging.New(logLevel, logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	st, err := store.Open(store.Options{Backend: backend, Dir: dataDir, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("store opened",
		zap.String("backend", backend),
		zap.String("dir", dataDir),
		zap.String("command", cmd.Name()))
	return &env{
		cfg:    fileCfg,
		store:  st,
		svc:    app.NewService(st, app.WithLogger(logger)),
		logger: logger,
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close store", zap.Error(err))
		logErrf("failed to close store: %v\n", err)
	}
	// Sync fails on some files (e.g. /dev/stderr); nothing to recover.
	_ = e.logger.Sync()
}

func runFormCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	theme, err := e.svc.Theme(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	window := intOrDefault(e.cfg.Report.Window, defaultWindow)
	form := tui.NewModel(e.svc, theme, window, e.logger)
	program := tea.NewProgram(form, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a measurement and print the BMI",
		Args:  cobra.NoArgs,
		RunE:  runAddCmd,
	}
	cmd.Flags().StringVar(&addName, "name", "", "person name")
	cmd.Flags().StringVar(&addWeight, "weight", "", "weight in kg")
	cmd.Flags().StringVar(&addHeight, "height", "", "height in m, or cm when greater than 3")
	return cmd
}

func runAddCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.svc.Submit(context.Background(), addName, addWeight, addHeight)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), res.Label()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show BMI history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyName, "name", "", "person name")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print summary, plot and table instead of the TUI")
	cmd.Flags().IntVar(&historyWindow, "window", defaultWindow, "moving average window")
	cmd.Flags().IntVar(&historyHeight, "height", defaultPlotHeight, "plot height in rows (plain output)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	applyIntConfig(cmd, "window", &historyWindow, e.cfg.Report.Window)
	applyIntConfig(cmd, "height", &historyHeight, e.cfg.Report.Height)
	if historyWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if historyHeight < 2 {
		return fmt.Errorf("--height must be >= 2")
	}
	cfg := model.ReportConfig{
		Name:   strings.TrimSpace(historyName),
		Window: historyWindow,
		Height: historyHeight,
	}

	if !historyPlain {
		browser := historyui.NewModel(e.svc, cfg)
		program := tea.NewProgram(browser, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	if cfg.Name == "" {
		return fmt.Errorf("--name is required with --plain")
	}
	r, err := e.svc.Report(context.Background(), cfg)
	if err != nil {
		return err
	}
	return renderPlainHistory(cmd.OutOrStdout(), r, cfg.Height)
}

func renderPlainHistory(w io.Writer, r report.Report, height int) error {
	if err := report.RenderSummary(w, r); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if len(r.Points) == 0 {
		return nil
	}
	if err := report.RenderTrend(w, r, 0, height, false); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	if err := report.RenderHistoryTable(w, r.Points); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a person's history as csv, json or yaml",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportName, "name", "", "person name")
	cmd.Flags().StringVar(&exportOut, "out", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&exportFormat, "format", "", "csv, json or yaml (default: from --out extension, else csv)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(exportFormat, exportOut)
	if err != nil {
		return err
	}
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	name := strings.TrimSpace(exportName)
	table, err := e.svc.ExportRows(context.Background(), name)
	if err != nil {
		return err
	}
	if exportOut == "" || exportOut == "-" {
		err = report.WriteExport(cmd.OutOrStdout(), table, format)
	} else {
		err = writeExportFile(exportOut, table, format)
	}
	if errors.Is(err, report.ErrNoData) {
		return fmt.Errorf("%w for %q", report.ErrNoData, name)
	}
	if err != nil {
		return err
	}
	if exportOut != "" && exportOut != "-" {
		e.logger.Info("history exported", zap.String("name", name), zap.String("path", exportOut), zap.Int("rows", len(table.Rows)))
		logErrf("Wrote %d rows to %s\n", len(table.Rows), exportOut)
	}
	return nil
}

func writeExportFile(path string, table report.Table, format string) error {
	if table.Empty() {
		return report.ErrNoData
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := report.WriteExport(writer, table, format); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync export: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set export permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := renameExport(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	committed = true
	return nil
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all measurements for a person",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().StringVar(&clearName, "name", "", "person name")
	cmd.Flags().BoolVar(&clearYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	name := strings.TrimSpace(clearName)
	if name == "" {
		return fmt.Errorf("--name is required")
	}
	if !clearYes {
		if !stdinIsTerminal() {
			return fmt.Errorf("refusing to clear history for %q without --yes", name)
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Clear all BMI history for %s? [y/N] ", name))
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Clear cancelled.")
			return nil
		}
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.svc.ClearHistory(context.Background(), name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "History cleared for %s.\n", name); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark|toggle]",
		Short: "Show or change the UI theme",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runThemeCmd,
	}
}

func runThemeCmd(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	var theme model.Theme
	switch {
	case len(args) == 0:
		theme, err = e.svc.Theme(ctx)
	case strings.EqualFold(args[0], "toggle"):
		theme, err = e.svc.ToggleTheme(ctx)
	default:
		theme = model.Theme(strings.ToLower(strings.TrimSpace(args[0])))
		err = e.svc.SetTheme(ctx, theme)
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), theme); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPeopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List names with stored history",
		Args:  cobra.NoArgs,
		RunE:  runPeopleCmd,
	}
}

func runPeopleCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	names, err := e.svc.Names(context.Background())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		logErrln("No history stored yet. Add one with: bmilog add --name <name> --weight <kg> --height <m|cm>")
		return nil
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func intOrDefault(value *int, fallback int) int {
	if value == nil || *value < 1 {
		return fallback
	}
	return *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# bmilog configuration
# Uncomment a value to enable it. CLI flags override config values.

[storage]
# backend = %q          # "json" or "sqlite"
# dir = %q

[log]
# level = %q            # debug, info, warn, error or off
# file = %q

[report]
# window = %d               # Moving average window
# height = %d              # Plot height in rows
`,
		defaultBackend,
		config.DefaultDataDir(),
		defaultLogLevel,
		config.DefaultLogPath(),
		defaultWindow,
		defaultPlotHeight,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
