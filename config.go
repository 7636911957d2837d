package main

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName = "speccheck"
	configFileName = configBaseName + ".yaml"
	envPrefix      = "SPECCHECK"

	urlKey                = "url"
	runKey                = "run"
	skipKey               = "skip"
	focusKey              = "focus"
	parallelKey           = "parallel"
	debugKey              = "debug"
	debugAllKey           = "debug-all"
	reportKey             = "report"
	stopServiceAtEndKey   = "stop-service-at-end"
	statusQueryTimeoutKey = "status-timeout"
	portKey               = "serve.port"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultParallel           = 1
	defaultStatusQueryTimeout = time.Second * 10
	defaultPort               = 8111

	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// newConfig creates the configuration store. Values come from flags, then SPECCHECK_*
// environment variables, then speccheck.yaml in the config directory, then the defaults here.
func newConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(urlKey, "")
	v.SetDefault(runKey, []string{})
	v.SetDefault(skipKey, []string{})
	v.SetDefault(focusKey, []string{})
	v.SetDefault(parallelKey, defaultParallel)
	v.SetDefault(debugKey, false)
	v.SetDefault(debugAllKey, false)
	v.SetDefault(reportKey, "")
	v.SetDefault(stopServiceAtEndKey, false)
	v.SetDefault(statusQueryTimeoutKey, defaultStatusQueryTimeout)
	v.SetDefault(portKey, defaultPort)

	v.SetDefault(logFilenameKey, "")
	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "":
		return defaultLevel
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}
	return defaultLevel
}

// configureLogger creates the process log. Without a log file name, log output is discarded.
// With one, it goes to a size-rotated file; verbose lowers the level to debug.
func configureLogger(v *viper.Viper, verbose bool) *slog.Logger {
	logPath := strings.TrimSpace(v.GetString(logFilenameKey))
	if logPath == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := parseSlogLevel(v.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		level = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    v.GetInt(logMaxSizeKey),
		MaxBackups: v.GetInt(logMaxBackupsKey),
		MaxAge:     v.GetInt(logMaxAgeKey),
		Compress:   v.GetBool(logCompressKey),
	}
	return slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))
}
