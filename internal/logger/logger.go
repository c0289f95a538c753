// Package logger builds the zap loggers handed to graphcal's components.
package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr.
// Verbose enables debug output with caller information; otherwise only
// warnings and errors are shown.
func New(verbose bool) *zap.SugaredLogger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter returns a console logger writing to w.
func NewWithWriter(w io.Writer, verbose bool) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	level := zapcore.WarnLevel
	if verbose {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)

	opts := []zap.Option{}
	if verbose {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...).Sugar()
}
