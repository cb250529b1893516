// Package main provides the CLI entrypoint for risk.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/risk/internal/battle"
	"github.com/verte-zerg/risk/internal/config"
	"github.com/verte-zerg/risk/internal/dice"
	"github.com/verte-zerg/risk/internal/estimate"
	"github.com/verte-zerg/risk/internal/export"
	"github.com/verte-zerg/risk/internal/historyui"
	"github.com/verte-zerg/risk/internal/model"
	"github.com/verte-zerg/risk/internal/rng"
	"github.com/verte-zerg/risk/internal/stats"
	"github.com/verte-zerg/risk/internal/store"
	"github.com/verte-zerg/risk/internal/tui"
)

const (
	defaultTrials     = 100000
	defaultWorkers    = 4
	defaultFormat     = "table"
	defaultPlotHeight = 10
)

var (
	simSeed    int64
	simVerbose bool

	probTrials  int
	probWorkers int
	probSeed    int64
	probFormat  string
	probSave    bool
	probPlot    bool
	probCopy    bool

	playSeed int64

	historySince string
	historyLast  int
	historyPlain bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "risk",
		Short:         "Risk dice battle simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newSimCmd())
	rootCmd.AddCommand(newProbCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim <attackers> <defenders>",
		Short: "Simulate a single battle",
		Args:  cobra.ExactArgs(2),
		RunE:  runSimCmd,
	}
	cmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0: time based)")
	cmd.Flags().BoolVar(&simVerbose, "verbose", false, "print every roll")
	return cmd
}

func runSimCmd(cmd *cobra.Command, args []string) error {
	fileCfg, envCfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyInt64Config(cmd, "seed", &simSeed, envCfg.Seed, fileCfg.Sim.Seed)
	applyBoolConfig(cmd, "verbose", &simVerbose, fileCfg.Sim.Verbose)

	attackers, defenders, err := parseForces(args)
	if err != nil {
		return err
	}
	cfg := model.SimConfig{
		Attackers: attackers,
		Defenders: defenders,
		Seed:      resolveSeed(simSeed),
		Verbose:   simVerbose,
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "simulating battle with %d attackers vs. %d defenders\n", cfg.Attackers, cfg.Defenders); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	roller := dice.NewSeeded(cfg.Seed)
	var res battle.Result
	if cfg.Verbose {
		var rolls []battle.Roll
		res, rolls = battle.SimulateTrace(roller, cfg.Attackers, cfg.Defenders)
		if err := stats.RenderRolls(out, cfg.Attackers, cfg.Defenders, rolls); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		res = battle.Simulate(roller, cfg.Attackers, cfg.Defenders)
	}
	if err := stats.RenderBattle(out, res); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newProbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prob <attackers> <defenders> [trials]",
		Short: "Estimate outcome probabilities of a battle",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runProbCmd,
	}
	cmd.Flags().IntVar(&probTrials, "trials", defaultTrials, "number of simulated battles")
	cmd.Flags().IntVar(&probWorkers, "workers", defaultWorkers, "number of parallel workers")
	cmd.Flags().Int64Var(&probSeed, "seed", 0, "random seed (0: time based)")
	cmd.Flags().StringVar(&probFormat, "format", defaultFormat, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&probSave, "save", false, "store the run in the history database")
	cmd.Flags().BoolVar(&probPlot, "plot", false, "plot cumulative probabilities")
	cmd.Flags().BoolVar(&probCopy, "copy", false, "copy the report to the clipboard")
	return cmd
}

func runProbCmd(cmd *cobra.Command, args []string) error {
	fileCfg, envCfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "trials", &probTrials, envCfg.Trials, fileCfg.Prob.Trials)
	applyIntConfig(cmd, "workers", &probWorkers, envCfg.Workers, fileCfg.Prob.Workers)
	applyInt64Config(cmd, "seed", &probSeed, envCfg.Seed, fileCfg.Prob.Seed)
	applyStringConfig(cmd, "format", &probFormat, fileCfg.Prob.Format)
	applyBoolConfig(cmd, "save", &probSave, fileCfg.Prob.Save)
	applyBoolConfig(cmd, "plot", &probPlot, fileCfg.Prob.Plot)

	attackers, defenders, err := parseForces(args)
	if err != nil {
		return err
	}
	if len(args) == 3 {
		if cmd.Flags().Changed("trials") {
			return fmt.Errorf("trials given both as argument and --trials")
		}
		probTrials, err = parsePositive("trials", args[2])
		if err != nil {
			return err
		}
	}

	cfg := model.ProbConfig{
		Attackers: attackers,
		Defenders: defenders,
		Trials:    probTrials,
		Workers:   probWorkers,
		Seed:      resolveSeed(probSeed),
		Format:    probFormat,
		Save:      probSave,
		Plot:      probPlot,
		Copy:      probCopy,
	}
	if err := validateProbConfig(cfg); err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	res, err := estimate.Run(ctx, estimate.Options{
		Attackers: cfg.Attackers,
		Defenders: cfg.Defenders,
		Trials:    cfg.Trials,
		Workers:   cfg.Workers,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("failed to run estimate: %w", err)
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	report, err := renderProbOutput(format, cfg, res, stats.ShouldUseColor(out))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if _, err := io.WriteString(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.Copy {
		plain := report
		if format == export.FormatTable && cfg.Plot {
			if plain, err = renderProbOutput(format, cfg, res, false); err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
		}
		if err := clipboard.WriteAll(plain); err != nil {
			logErrf("failed to copy report: %v\n", err)
		} else {
			logErrln("copied report to clipboard")
		}
	}
	if cfg.Save {
		id, err := saveRun(ctx, envCfg, cfg, res, elapsed)
		if err != nil {
			return err
		}
		logErrf("saved run %d\n", id)
	}
	return nil
}

func renderProbOutput(format export.Format, cfg model.ProbConfig, res estimate.Result, useColor bool) (string, error) {
	var buf bytes.Buffer
	var err error
	if format == export.FormatTable {
		err = renderProbReport(&buf, cfg, res, useColor)
	} else {
		err = export.Write(&buf, format, export.NewDocument(res, cfg.Seed))
	}
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderProbReport(w io.Writer, cfg model.ProbConfig, res estimate.Result, useColor bool) error {
	if _, err := fmt.Fprintf(w, "calculating probabilities for %d attackers vs. %d defenders using %d runs\n",
		cfg.Attackers, cfg.Defenders, cfg.Trials); err != nil {
		return err
	}
	if err := stats.RenderEstimate(w, res); err != nil {
		return err
	}
	if !cfg.Plot {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	width := stats.PlotWidthFor(stats.TerminalWidth())
	return stats.PlotCurves(w, "Cumulative probability", stats.CumulativeSeries(res), width, defaultPlotHeight, useColor)
}

func saveRun(ctx context.Context, envCfg config.EnvConfig, cfg model.ProbConfig, res estimate.Result, elapsed time.Duration) (int64, error) {
	st, err := openStore(envCfg)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	run := model.RunRecord{
		CreatedAt:    time.Now().UTC(),
		Attackers:    res.Attackers,
		Defenders:    res.Defenders,
		Trials:       res.Trials,
		Workers:      cfg.Workers,
		Seed:         cfg.Seed,
		AttackerWins: res.AttackerWins.Total(),
		DefenderWins: res.DefenderWins.Total(),
		DurationMs:   elapsed.Milliseconds(),
	}
	id, err := st.InsertRun(ctx, run, stats.RecordsFromEstimate(res))
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <attackers> <defenders>",
		Short: "Fight a battle roll by roll",
		Args:  cobra.ExactArgs(2),
		RunE:  runPlayCmd,
	}
	cmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0: time based)")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	_, envCfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyInt64Config(cmd, "seed", &playSeed, envCfg.Seed)

	attackers, defenders, err := parseForces(args)
	if err != nil {
		return err
	}
	roller := dice.NewSeeded(resolveSeed(playSeed))
	program := tea.NewProgram(tui.NewModel(attackers, defenders, roller), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved probability runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a table instead of opening the TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	_, envCfg, err := loadSettings()
	if err != nil {
		return err
	}
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		parsed = parsed.UTC()
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.HistoryConfig{Since: sinceTime, Last: historyLast}

	st, err := openStore(envCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	history, err := stats.BuildHistory(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if historyPlain {
		if err := stats.RenderRuns(cmd.OutOrStdout(), history.Runs); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	load := func(ctx context.Context, run model.RunRecord) (estimate.Result, error) {
		return stats.LoadEstimate(ctx, st, run)
	}
	program := tea.NewProgram(historyui.NewModel(history.Runs, load), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
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

func loadSettings() (config.FileConfig, config.EnvConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, config.EnvConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return config.FileConfig{}, config.EnvConfig{}, fmt.Errorf("failed to load environment: %w", err)
	}
	return fileCfg, envCfg, nil
}

func openStore(envCfg config.EnvConfig) (*store.Store, error) {
	storePath := config.DefaultDBPath()
	if envCfg.DBPath != nil && *envCfg.DBPath != "" {
		storePath = *envCfg.DBPath
	}
	st, err := store.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	seed = rng.TimeSeed()
	logErrf("using seed %d\n", seed)
	return seed
}

func parseForces(args []string) (attackers, defenders int, err error) {
	attackers, err = parsePositive("attackers", args[0])
	if err != nil {
		return 0, 0, err
	}
	defenders, err = parsePositive("defenders", args[1])
	if err != nil {
		return 0, 0, err
	}
	return attackers, defenders, nil
}

func parsePositive(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be > 0, got %d", name, n)
	}
	return n, nil
}

func validateProbConfig(cfg model.ProbConfig) error {
	if cfg.Trials <= 0 {
		return fmt.Errorf("--trials must be > 0")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("--workers must be > 0")
	}
	return nil
}

// The apply helpers copy the first non-nil value into target unless the flag
// was set on the command line. Values are listed from highest precedence.

func applyStringConfig(cmd *cobra.Command, name string, target *string, values ...*string) {
	if cmd.Flags().Changed(name) {
		return
	}
	for _, v := range values {
		if v != nil {
			*target = *v
			return
		}
	}
}

func applyIntConfig(cmd *cobra.Command, name string, target *int, values ...*int) {
	if cmd.Flags().Changed(name) {
		return
	}
	for _, v := range values {
		if v != nil {
			*target = *v
			return
		}
	}
}

func applyInt64Config(cmd *cobra.Command, name string, target *int64, values ...*int64) {
	if cmd.Flags().Changed(name) {
		return
	}
	for _, v := range values {
		if v != nil {
			*target = *v
			return
		}
	}
}

func applyBoolConfig(cmd *cobra.Command, name string, target *bool, values ...*bool) {
	if cmd.Flags().Changed(name) {
		return
	}
	for _, v := range values {
		if v != nil {
			*target = *v
			return
		}
	}
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# risk configuration
# Uncomment a value to enable it. CLI flags and RISK_* variables override config values.

[sim]
# seed = 0                # Random seed, 0 picks one from the clock
# verbose = false         # Print every roll

[prob]
# trials = %d         # Simulated battles per estimate
# workers = %d            # Parallel workers
# seed = 0                # Random seed, 0 picks one from the clock
# format = %q        # Output format: table, json or yaml
# save = false            # Store runs in the history database
# plot = false            # Plot cumulative probabilities
`,
		defaultTrials,
		defaultWorkers,
		defaultFormat,
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
