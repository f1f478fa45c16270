package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger пишет структурированные JSON-логи (slog) с ротацией файла через lumberjack.
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// Options задаёт ротацию лог-файла. Нулевые значения берутся из lumberjack.
type Options struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewLogger создаёт логгер. Пустой logPath означает stderr.
func NewLogger(logPath, logLevel string, opts Options) *Logger {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)

	if logPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		out = rotator
		closer = rotator
	}

	return NewLoggerWithWriter(out, logLevel, closer)
}

// NewLoggerWithWriter пишет в произвольный writer (тесты, stdout).
func NewLoggerWithWriter(w io.Writer, logLevel string, closer io.Closer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(logLevel)})
	return &Logger{
		slog:   slog.New(handler),
		closer: closer,
	}
}

// Nop отбрасывает все записи.
func Nop() *Logger {
	return NewLoggerWithWriter(io.Discard, "error", nil)
}

// ParseLevel переводит строку конфига в slog.Level; неизвестное значение = info.
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

// With возвращает логгер с постоянными полями.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{slog: l.slog.With(fields...), closer: l.closer}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.slog.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.slog.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.slog.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.slog.Error(msg, fields...)
}

// Close закрывает файл ротации, если он есть.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
