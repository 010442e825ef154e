package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Panic(message string, values ...any)
	Fatal(error error, values ...any)
	Printf(format string, args ...interface{})
}

func init() {
	var config zap.Config

	if os.Getenv("LOG_ENV") == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	if lvl, ok := parseLevel(os.Getenv("LOG_LEVEL")); ok {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	_, err := NewLogger(config)
	if err != nil {
		panic(err)
	}
}

// SetLevel changes the level of the package logger at runtime.
func SetLevel(level string) bool {
	lvl, ok := parseLevel(level)
	if !ok {
		return false
	}
	GetLogger().level.SetLevel(lvl)
	return true
}

func parseLevel(s string) (zapcore.Level, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zapcore.InfoLevel, false
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

func Info(msg string, values ...any) {
	GetLogger().Info(msg, values...)
}

func Warn(msg string, values ...any) {
	GetLogger().Warn(msg, values...)
}

func Error(msg string, values ...any) {
	GetLogger().Error(msg, values...)
}

func Debug(msg string, values ...any) {
	GetLogger().Debug(msg, values...)
}

func Panic(msg string, values ...any) {
	GetLogger().Panic(msg, values...)
}

func Fatal(error error, values ...any) {
	GetLogger().Fatal(error, values...)
}

// With returns a child logger that always carries the given key-value pairs.
func With(values ...any) *ZapLogger {
	return GetLogger().With(values...)
}
