// Package zap provides a Zap implementation of the contracts.Logger interface.
//
// Usage:
//
//	driver, err := zap.NewDriverFromConfig(contracts.LoggerConfig{
//	    Level:  "debug",
//	    Format: "console",
//	    Output: "stderr",
//	})
//	defer driver.Sync()
package zap

import (
	"fmt"
	"os"
	"strings"

	"github.com/agroguard/agroguard/core/pkg/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Driver implements contracts.Logger using Zap
type Driver struct {
	sugar *zap.SugaredLogger
}

// Config for creating a new Zap driver
type Config struct {
	Level         string         // debug, info, warn, error
	Format        string         // json, console
	Output        string         // stdout, stderr, or file path
	AddCaller     bool           // add caller information
	AddStacktrace bool           // add stacktrace on error level
	DefaultFields map[string]any // fields added to all logs
}

// DefaultConfig returns the CLI defaults. Logs go to stderr so command output stays clean.
func DefaultConfig() *Config {
	return &Config{
		Level:  contracts.LogLevelInfo,
		Format: contracts.LogFormatConsole,
		Output: "stderr",
	}
}

// NewDriver creates a new Zap logger driver with default settings
func NewDriver() *Driver {
	d, err := NewDriverWithConfig(DefaultConfig())
	if err != nil {
		// stderr cannot fail to open
		panic(err)
	}
	return d
}

// NewDriverFromConfig creates a driver from the application log settings
func NewDriverFromConfig(lc contracts.LoggerConfig) (*Driver, error) {
	cfg := DefaultConfig()
	if lc.Level != "" {
		cfg.Level = lc.Level
	}
	if lc.Format != "" {
		cfg.Format = lc.Format
	}
	if lc.Output != "" {
		cfg.Output = lc.Output
	}
	return NewDriverWithConfig(cfg)
}

// ParseLevel maps a level name onto a zap level
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case contracts.LogLevelDebug:
		return zapcore.DebugLevel, nil
	case contracts.LogLevelInfo, "":
		return zapcore.InfoLevel, nil
	case contracts.LogLevelWarn, "warning":
		return zapcore.WarnLevel, nil
	case contracts.LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// NewDriverWithConfig creates a new Zap logger driver with custom config
func NewDriverWithConfig(cfg *Config) (*Driver, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case contracts.LogFormatConsole:
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case contracts.LogFormatJSON, "":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var output zapcore.WriteSyncer
	switch cfg.Output {
	case "stderr", "":
		output = zapcore.Lock(os.Stderr)
	case "stdout":
		output = zapcore.Lock(os.Stdout)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = zapcore.AddSync(file)
	}

	return NewDriverWithCore(zapcore.NewCore(encoder, output, level), cfg), nil
}

// NewDriverWithCore wraps a zap core using the caller, stacktrace and field options of cfg.
// Tests pass an observer core here.
func NewDriverWithCore(core zapcore.Core, cfg *Config) *Driver {
	opts := []zap.Option{}
	if cfg != nil {
		if cfg.AddCaller {
			opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
		}
		if cfg.AddStacktrace {
			opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
		}
		if len(cfg.DefaultFields) > 0 {
			fields := make([]zap.Field, 0, len(cfg.DefaultFields))
			for k, v := range cfg.DefaultFields {
				fields = append(fields, zap.Any(k, v))
			}
			opts = append(opts, zap.Fields(fields...))
		}
	}
	return NewDriverWithLogger(zap.New(core, opts...))
}

// NewDriverWithLogger creates a driver from an existing Zap logger
func NewDriverWithLogger(logger *zap.Logger) *Driver {
	return &Driver{sugar: logger.Sugar()}
}

// Logger returns the underlying Zap logger
func (d *Driver) Logger() *zap.Logger {
	return d.sugar.Desugar()
}

// Debug logs a debug message
func (d *Driver) Debug(msg string, fields ...any) {
	d.sugar.Debugw(msg, fields...)
}

// Info logs an info message
func (d *Driver) Info(msg string, fields ...any) {
	d.sugar.Infow(msg, fields...)
}

// Warn logs a warning message
func (d *Driver) Warn(msg string, fields ...any) {
	d.sugar.Warnw(msg, fields...)
}

// Error logs an error message
func (d *Driver) Error(msg string, fields ...any) {
	d.sugar.Errorw(msg, fields...)
}

// WithFields returns a logger with additional fields
func (d *Driver) WithFields(fields ...any) contracts.Logger {
	return &Driver{sugar: d.sugar.With(fields...)}
}

// WithError returns a logger with error field
func (d *Driver) WithError(err error) contracts.Logger {
	if err == nil {
		return d
	}
	return &Driver{sugar: d.sugar.With("error", err.Error())}
}

// Named returns a named sub-logger that keeps the fields already attached
func (d *Driver) Named(name string) contracts.Logger {
	return &Driver{sugar: d.sugar.Named(name)}
}

// Sync flushes any buffered log entries
func (d *Driver) Sync() error {
	return d.sugar.Sync()
}

// Ensure Driver implements contracts.Logger
var _ contracts.Logger = (*Driver)(nil)
