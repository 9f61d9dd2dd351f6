package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type LogManager interface {
	SetVerboseLevel()
	SetDebugLevel()
	Debug(message interface{}, keyvals ...interface{})
	Info(message interface{}, keyvals ...interface{})
	Warn(message interface{}, keyvals ...interface{})
	Error(message interface{}, keyvals ...interface{})
	With(keyvals ...interface{}) LogManager
}

type logManager struct {
	logger *log.Logger
}

var (
	instance *logManager
	once     sync.Once
)

// GetLogManager returns the process-wide logger writing to stderr.
func GetLogManager() LogManager {
	once.Do(func() {
		instance = &logManager{logger: newLogger(os.Stderr, log.WarnLevel)}
	})
	return instance
}

// New returns a logger writing to w at info level.
func New(w io.Writer) LogManager {
	return &logManager{logger: newLogger(w, log.InfoLevel)}
}

// Discard drops everything; used by tests.
func Discard() LogManager {
	return New(io.Discard)
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "wanwu",
	})
}

func (lm *logManager) SetVerboseLevel() {
	lm.logger.SetLevel(log.InfoLevel)
}

func (lm *logManager) SetDebugLevel() {
	lm.logger.SetLevel(log.DebugLevel)
}

func (lm *logManager) Debug(message interface{}, keyvals ...interface{}) {
	lm.logger.Debug(message, keyvals...)
}

func (lm *logManager) Info(message interface{}, keyvals ...interface{}) {
	lm.logger.Info(message, keyvals...)
}

func (lm *logManager) Warn(message interface{}, keyvals ...interface{}) {
	lm.logger.Warn(message, keyvals...)
}

func (lm *logManager) Error(message interface{}, keyvals ...interface{}) {
	lm.logger.Error(message, keyvals...)
}

func (lm *logManager) With(keyvals ...interface{}) LogManager {
	return &logManager{logger: lm.logger.With(keyvals...)}
}
