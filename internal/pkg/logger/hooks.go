package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileHook fans log entries out to separate rotated files keyed by
// their "type" field (pipeline/search/cache/error), falling back to a
// default file for untyped entries.
type FileHook struct {
	cfg       Config
	writers   map[string]io.Writer
	formatter logrus.Formatter
	mu        sync.Mutex
}

// NewFileHook builds a FileHook rooted alongside cfg.FilePath.
func NewFileHook(cfg Config) *FileHook {
	return &FileHook{
		cfg:     cfg,
		writers: make(map[string]io.Writer),
		formatter: &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		},
	}
}

// Levels reports that this hook fires for every level.
func (h *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire writes entry to the file for its LogType, creating that file's
// writer lazily on first use.
func (h *FileHook) Fire(entry *logrus.Entry) error {
	logType := "default"
	if lt, ok := entry.Data["type"]; ok {
		switch t := lt.(type) {
		case LogType:
			logType = string(t)
		case string:
			logType = t
		}
	}

	formatted, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	writer := h.writerFor(logType)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = writer.Write(formatted)
	return err
}

func (h *FileHook) writerFor(logType string) io.Writer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.writers[logType]; ok {
		return w
	}

	dir := filepath.Dir(h.cfg.FilePath)
	var filename string
	switch logType {
	case string(PipelineLog), string(SearchLog), string(CacheLog), string(ErrorLog):
		filename = filepath.Join(dir, logType+".log")
	default:
		filename = h.cfg.FilePath
	}

	_ = os.MkdirAll(filepath.Dir(filename), 0o755)
	w := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    h.cfg.MaxSizeMB,
		MaxBackups: h.cfg.MaxBackups,
		MaxAge:     h.cfg.MaxAgeDays,
		Compress:   h.cfg.Compress,
	}
	h.writers[logType] = w
	return w
}
