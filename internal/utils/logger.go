package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogLevel          = "info"
	defaultMaxSizeMegabytes  = 10
	defaultMaxBackups        = 3
	defaultMaxAgeDays        = 28
	messageKey               = "message"
	fileTimeKey              = "time"
	parseLogLevelErrorFormat = "parse log level %q: %w"
	closeLogFileErrorFormat  = "close log file %s: %w"
)

// LoggerOptions configures NewApplicationLogger.
type LoggerOptions struct {
	// Level is a zap level name; empty selects info.
	Level string
	// Console receives human-readable output; nil selects os.Stderr.
	Console io.Writer
	// FilePath, when set, additionally writes timestamped entries to a rotated log file.
	FilePath         string
	MaxSizeMegabytes int
	MaxBackups       int
	MaxAgeDays       int
}

// NewApplicationLogger constructs a zap logger configured for human-readable console
// output, colored when the console is a terminal, optionally teed into a rotated file.
// The returned close function flushes the logger and releases the log file.
func NewApplicationLogger(options LoggerOptions) (*zap.Logger, func() error, error) {
	levelName := options.Level
	if levelName == "" {
		levelName = defaultLogLevel
	}
	level, levelError := zapcore.ParseLevel(levelName)
	if levelError != nil {
		return nil, nil, fmt.Errorf(parseLogLevelErrorFormat, levelName, levelError)
	}
	console := options.Console
	if console == nil {
		console = os.Stderr
	}

	consoleEncoderConfig := zap.NewProductionEncoderConfig()
	consoleEncoderConfig.TimeKey = ""
	consoleEncoderConfig.NameKey = ""
	consoleEncoderConfig.CallerKey = ""
	consoleEncoderConfig.StacktraceKey = ""
	consoleEncoderConfig.MessageKey = messageKey
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if isTerminal(console) {
		consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	var rotatingFile *lumberjack.Logger
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(console), level),
	}

	if options.FilePath != "" {
		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.TimeKey = fileTimeKey
		fileEncoderConfig.MessageKey = messageKey
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		rotatingFile = &lumberjack.Logger{
			Filename:   options.FilePath,
			MaxSize:    valueOrDefault(options.MaxSizeMegabytes, defaultMaxSizeMegabytes),
			MaxBackups: valueOrDefault(options.MaxBackups, defaultMaxBackups),
			MaxAge:     valueOrDefault(options.MaxAgeDays, defaultMaxAgeDays),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderConfig), zapcore.AddSync(rotatingFile), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeLogger := func() error {
		_ = logger.Sync()
		if rotatingFile == nil {
			return nil
		}
		if err := rotatingFile.Close(); err != nil {
			return fmt.Errorf(closeLogFileErrorFormat, options.FilePath, err)
		}
		return nil
	}
	return logger, closeLogger, nil
}

func isTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func valueOrDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
