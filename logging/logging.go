// Package logging builds the zap logger used by the engine and the command line tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger owns the root logger and the file it writes to, if any.
type Logger struct {
	root   *zap.Logger
	level  zap.AtomicLevel
	closer io.Closer
}

// New opens the configured output and builds the root logger.
// stdout and stderr are used for the STDOUT and STDERR files.
func New(c Config, stdout, stderr zapcore.WriteSyncer) (*Logger, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		level: zap.NewAtomicLevel(),
	}

	var output zapcore.WriteSyncer
	switch c.File {
	case "STDERR":
		output = stderr
	case "STDOUT":
		output = stdout
	default:
		dir := path.Dir(c.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				return nil, err
			}
		}

		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return nil, err
		}
		output = f
		l.closer = f
	}

	// Set level from configuration
	if err := l.SetLevel(c.Level); err != nil {
		return nil, err
	}

	encoder, err := newEncoder(c.Encoding)
	if err != nil {
		return nil, err
	}

	l.root = zap.New(zapcore.NewCore(encoder, output, l.level))
	return l, nil
}

func newEncoder(encoding string) (zapcore.Encoder, error) {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeDuration = zapcore.StringDurationEncoder

	switch strings.ToLower(encoding) {
	case "logfmt":
		return zaplogfmt.NewEncoder(config), nil
	case "json":
		return zapcore.NewJSONEncoder(config), nil
	case "console":
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(config), nil
	default:
		return nil, fmt.Errorf("unknown log encoding %s", encoding)
	}
}

func (l *Logger) Root() *zap.Logger {
	return l.root
}

func (l *Logger) SetLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

// Close flushes the logger and closes the log file.
func (l *Logger) Close() error {
	_ = l.root.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zap.DebugLevel, nil
	case "INFO":
		return zap.InfoLevel, nil
	case "WARN":
		return zap.WarnLevel, nil
	case "ERROR":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown logging level %s", level)
	}
}
