package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"gooze.dev/pkg/purebundle/internal/domain"
	m "gooze.dev/pkg/purebundle/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "purebundle"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	reportsFlagName  = "reports"
	noCacheFlagName  = "no-cache"
	excludeFlagName  = "exclude"
	parallelFlagName = "parallel"
	presetFlagName   = "preset"
	passesFlagName   = "passes"
	optionsFlagName  = "options"
	modeFlagName     = "mode"
	outDirFlagName   = "out-dir"
	verboseFlagName  = "verbose"

	excludeConfigKey  = "paths.exclude"
	parallelConfigKey = "run.parallel"
	spillDirConfigKey = "run.spill_dir"
	presetConfigKey   = "pipeline.preset"
	passesConfigKey   = "pipeline.passes"
	optionsConfigKey  = "options"
	modeConfigKey     = "output.mode"
	outDirConfigKey   = "output.out_dir"

	defaultReportsPath = ".purebundle/report.yaml"
	defaultNoCache     = false
	defaultPreset      = domain.PresetPurebundle
	defaultMode        = string(domain.ModeCheck)

	envPrefix = "PUREBUNDLE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".purebundle.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultParallel = runtime.NumCPU()

var globalLogger *slog.Logger

// ErrInvalidConfig is returned when purebundle.yaml exists but cannot be read.
var ErrInvalidConfig = errors.New("invalid config file")

// configErr holds the result of reading the config file at startup.
var configErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	configErr = readConfig()
}

// readConfig loads purebundle.yaml. A missing file is not an error.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, viper.ConfigFileUsed(), err)
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(reportsFlagName, defaultReportsPath)
	viper.SetDefault(noCacheFlagName, defaultNoCache)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(spillDirConfigKey, "")
	viper.SetDefault(presetConfigKey, defaultPreset)
	viper.SetDefault(passesConfigKey, []string{})
	viper.SetDefault(optionsConfigKey, map[string]any{})
	viper.SetDefault(modeConfigKey, defaultMode)
	viper.SetDefault(outDirConfigKey, "")

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// loadOptions returns the pass options. A JSON blob given on the command
// line wins over the options section of the config file. Unknown keys are
// rejected in both forms.
func loadOptions(blob string) (m.Options, error) {
	if strings.TrimSpace(blob) != "" {
		return m.ParseOptions([]byte(blob))
	}

	var opts m.Options

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &opts,
	})
	if err != nil {
		return m.Options{}, err
	}

	if err := decoder.Decode(viper.Get(optionsConfigKey)); err != nil {
		return m.Options{}, fmt.Errorf("%w: %w", m.ErrInvalidOptions, err)
	}

	if err := opts.Validate(); err != nil {
		return m.Options{}, err
	}

	return opts, nil
}

// loadPipeline builds the configured pipeline. An explicit pass list
// overrides the preset.
func loadPipeline(optionsBlob string) (*domain.Pipeline, error) {
	if configErr != nil {
		return nil, configErr
	}

	opts, err := loadOptions(optionsBlob)
	if err != nil {
		return nil, err
	}

	var names []m.PassName
	for _, entry := range viper.GetStringSlice(passesConfigKey) {
		names = append(names, domain.ParsePassNames(entry)...)
	}

	if len(names) > 0 {
		return domain.NewPipeline(names, opts)
	}

	return domain.NewPreset(viper.GetString(presetConfigKey), opts)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// numeric slog levels, e.g. -4 for debug
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
