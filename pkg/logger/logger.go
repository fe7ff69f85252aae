package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger описывает логгер, используемый во всех слоях приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	With(args ...any) Logger
}

// SlogLogger реализует Logger поверх log/slog с JSON-выводом.
type SlogLogger struct {
	log *slog.Logger
}

type options struct {
	level  slog.Level
	writer io.Writer
	file   *lumberjack.Logger
}

// Option настраивает SlogLogger.
type Option func(*options)

// WithLevel задаёт минимальный уровень логирования: debug, info, warn, error.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = ParseLevel(level)
	}
}

// WithWriter подменяет основной поток вывода (по умолчанию os.Stdout).
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithFile дублирует логи в файл с ротацией.
func WithFile(path string, maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(o *options) {
		if path == "" {
			return
		}
		o.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
	}
}

func NewSlogLogger(opts ...Option) *SlogLogger {
	o := &options{
		level:  slog.LevelInfo,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	w := o.writer
	if o.file != nil {
		w = io.MultiWriter(o.writer, o.file)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level})

	return &SlogLogger{log: slog.New(h)}
}

// NewNopLogger возвращает логгер, который ничего не пишет.
func NewNopLogger() *SlogLogger {
	return NewSlogLogger(WithWriter(io.Discard))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelWarn, fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Errorf(err error, format string, args ...any) {
	attrs := []any{}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log.Log(context.Background(), slog.LevelError, fmt.Sprintf(format, args...), attrs...)
}

// With возвращает дочерний логгер с дополнительными полями.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{log: l.log.With(args...)}
}
