// Package cmd provides the root command and CLI setup for purebundle.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/purebundle/internal/adapter"
	"gooze.dev/pkg/purebundle/internal/controller"
	"gooze.dev/pkg/purebundle/internal/domain"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// reportsFlag is the run report shared by every command that reads or writes one.
var reportsFlag string

// noCacheFlag disables incremental caching when set.
var noCacheFlag bool

// excludePatterns filters discovered files by regex.
var excludePatterns []string

var (
	presetFlag   string
	passesFlag   []string
	optionsFlag  string
	modeFlag     string
	outDirFlag   string
	parallelFlag int
	verboseFlag  bool
)

// newWorkflow wires the workflow for one command invocation. Tests replace it.
var newWorkflow = buildWorkflow

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./app    scan multiple directories (non-recursive)
  - ./src/app.tsx  a single file

node_modules, dist and hidden directories are never scanned.`

const rootLongDescription = `Purebundle rewrites JavaScript and TypeScript modules ahead of bundling:
it drops side-effect-only imports, marks top-level calls as pure for
tree-shakers, wraps permission-guarded components and completes component
factory options.

` + pathPatternsHelp

const transformLongDescription = `Transform the given paths (default: current directory) through the
configured pipeline. The --mode flag decides what happens with the output.

` + pathPatternsHelp

const checkLongDescription = `Check that the given paths are already in their transformed form.
Exits with a non-zero status when any file would be rewritten or fails to parse.

` + pathPatternsHelp

const watchLongDescription = `Transform the given paths and keep re-transforming changed files until
interrupted.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purebundle",
		Short: "JS/TS pre-bundling rewrite passes",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&reportsFlag, reportsFlagName, "o", defaultReportsPath, "run report used as the incremental cache")
	bindFlagToConfig(flags.Lookup(reportsFlagName), reportsFlagName)

	flags.BoolVar(&noCacheFlag, noCacheFlagName, defaultNoCache, "disable cached incremental runs (transform everything)")
	bindFlagToConfig(flags.Lookup(noCacheFlagName), noCacheFlagName)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", nil, "exclude files matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringVar(&presetFlag, presetFlagName, defaultPreset, fmt.Sprintf("pipeline preset %v", domain.Presets()))
	bindFlagToConfig(flags.Lookup(presetFlagName), presetConfigKey)

	flags.StringSliceVar(&passesFlag, passesFlagName, nil, "explicit pass list, overrides --preset")
	bindFlagToConfig(flags.Lookup(passesFlagName), passesConfigKey)

	flags.StringVar(&optionsFlag, optionsFlagName, "", "pass options as a JSON object, overrides the options config section")

	flags.StringVarP(&modeFlag, modeFlagName, "m", defaultMode, fmt.Sprintf("output mode %v", domain.Modes()))
	bindFlagToConfig(flags.Lookup(modeFlagName), modeConfigKey)

	flags.StringVar(&outDirFlag, outDirFlagName, "", "target directory of the out-dir mode")
	bindFlagToConfig(flags.Lookup(outDirFlagName), outDirConfigKey)

	flags.IntVarP(&parallelFlag, parallelFlagName, "p", defaultParallel, "number of parallel workers")
	bindFlagToConfig(flags.Lookup(parallelFlagName), parallelConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// configuredMode returns the output mode from flags, env or config.
func configuredMode() (domain.Mode, error) {
	return domain.ParseMode(viper.GetString(modeConfigKey))
}

// transformArgs collects the run arguments shared by transform, check and watch.
func transformArgs(args []string, mode domain.Mode) domain.TransformArgs {
	exclude := viper.GetStringSlice(excludeConfigKey)

	if outDir := viper.GetString(outDirConfigKey); mode == domain.ModeOutDir && outDir != "" {
		exclude = append(exclude, outDirPattern(outDir))
	}

	return domain.TransformArgs{
		Paths:    parsePaths(args),
		Exclude:  exclude,
		Reports:  m.Path(viper.GetString(reportsFlagName)),
		UseCache: !viper.GetBool(noCacheFlagName),
		Threads:  max(viper.GetInt(parallelConfigKey), 1),
		SpillDir: viper.GetString(spillDirConfigKey),
	}
}

// outDirPattern keeps emitted files from being discovered as sources when the
// target directory lies inside the scanned tree.
func outDirPattern(outDir string) string {
	return `(^|/)` + regexp.QuoteMeta(filepath.ToSlash(filepath.Clean(outDir))) + `/`
}

func buildWorkflow(cmd *cobra.Command, mode domain.Mode) (domain.Workflow, error) {
	pipeline, err := loadPipeline(optionsFlag)
	if err != nil {
		return nil, err
	}

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	out := cmd.OutOrStdout()

	emitter, err := domain.NewEmitter(fsAdapter, mode, m.Path(viper.GetString(outDirConfigKey)), out)
	if err != nil {
		return nil, err
	}

	var ui controller.UI

	switch mode {
	case domain.ModeStdout, domain.ModeDiff:
		// stdout carries the emitted text
		ui = controller.NewSimpleUI(cmd.ErrOrStderr())
	default:
		ui = controller.NewUI(cmd, controller.IsTTY(out))
	}

	return domain.NewWorkflow(
		fsAdapter,
		adapter.NewReportStore(),
		adapter.NewFSNotifyWatcher(adapter.DefaultDebounce),
		ui,
		pipeline,
		domain.NewTransformer(fsAdapter, adapter.NewTreeSitterAdapter(), pipeline),
		emitter,
	), nil
}
