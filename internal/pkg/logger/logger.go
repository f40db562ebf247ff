// Package logger configures structured logging for the discovery
// pipeline: a logrus instance with a JSON formatter and a file hook
// that fans log records out by kind (pipeline phases, outbound search
// calls, cache hit/miss/evict, and errors) into separate rotated
// files.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogType tags an entry for the FileHook's per-kind fan-out.
type LogType string

const (
	// PipelineLog records phase transitions within a discovery run.
	PipelineLog LogType = "pipeline"
	// SearchLog records each outbound NVD catalog call.
	SearchLog LogType = "search"
	// CacheLog records rate-limiter cache hit/miss/evict decisions.
	CacheLog LogType = "cache"
	// ErrorLog records classified failures.
	ErrorLog LogType = "error"
)

// Config controls level, format, and file output.
type Config struct {
	Level      string
	Format     string // "json" or "text"
	Output     string // "stdout", "stderr", or "file"
	FilePath   string // base path; per-kind files live alongside it
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Caller     bool
}

// DefaultConfig is a reasonable console-only configuration.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Output: "stdout"}
}

// Manager wraps a configured *logrus.Logger.
type Manager struct {
	logger *logrus.Logger
	config Config
}

const timestampFormat = "2006-01-02 15:04:05.000"

// New builds a Manager from cfg.
func New(cfg Config) (*Manager, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if err := applyFormatter(l, cfg); err != nil {
		return nil, err
	}
	applyOutput(l, cfg)

	if cfg.Output == "file" && cfg.FilePath != "" {
		l.AddHook(NewFileHook(cfg))
	}
	l.SetReportCaller(cfg.Caller)

	return &Manager{logger: l, config: cfg}, nil
}

func applyFormatter(l *logrus.Logger, cfg Config) error {
	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
	return nil
}

func applyOutput(l *logrus.Logger, cfg Config) {
	switch cfg.Output {
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		// The FileHook handles actual file writes; the base logger
		// output is discarded so nothing is written twice.
		l.SetOutput(io.Discard)
	default:
		l.SetOutput(os.Stdout)
	}
}

// Logger returns the underlying *logrus.Logger.
func (m *Manager) Logger() *logrus.Logger { return m.logger }

// For returns an Entry pre-tagged with a LogType for FileHook routing.
func (m *Manager) For(kind LogType) *logrus.Entry {
	return m.logger.WithField("type", kind)
}
