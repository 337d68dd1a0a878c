package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

// Config selects the log level and the optional rotating audit file
type Config struct {
	Verbosity  int
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	JSON       bool
}

// DefaultConfig keeps a few weeks of audit history when a file is set
func DefaultConfig() Config {
	return Config{MaxSize: 10, MaxBackups: 5, MaxAge: 90, Compress: true}
}

// LevelFor maps the CLI verbosity onto a logrus level
func LevelFor(verbosity int) logrus.Level {
	if entities.DebugVerbosity(verbosity) {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// New builds a logger writing to stderr and, when FilePath is set, to a
// rotated file as well
func New(cfg Config, stderr io.Writer) (*logrus.Logger, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	log := logrus.New()
	log.SetLevel(LevelFor(cfg.Verbosity))

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:   "2006-01-02 15:04:05",
			DisableHTMLEscape: true,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	writers := []io.Writer{stderr}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))
	return log, nil
}
