package contracts

// Logger is the structured logger used across agroguard.
// Fields are passed as alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// WithFields returns a logger that adds fields to every entry
	WithFields(fields ...any) Logger

	// WithError returns a logger carrying an error field
	WithError(err error) Logger

	// Named returns a sub-logger with a name segment appended
	Named(name string) Logger

	// Sync flushes any buffered log entries
	Sync() error
}

// LoggerConfig configures a logger driver
type LoggerConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Format: json, console
	Format string `mapstructure:"format"`

	// Output: stdout, stderr, file path
	Output string `mapstructure:"output"`
}

// LogLevel constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogFormat constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// NopLogger discards every entry
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)       {}
func (NopLogger) Info(string, ...any)        {}
func (NopLogger) Warn(string, ...any)        {}
func (NopLogger) Error(string, ...any)       {}
func (n NopLogger) WithFields(...any) Logger { return n }
func (n NopLogger) WithError(error) Logger   { return n }
func (n NopLogger) Named(string) Logger      { return n }
func (NopLogger) Sync() error                { return nil }
