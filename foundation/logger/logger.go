// Package logger provides a thin wrapper around zap to provide a common
// logger setup for every service in this module: structured, JSON by
// default, stamped with the service name on every line.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a *zap.SugaredLogger that writes structured JSON to
// stdout, tagged with service as a constant field on every log line.
func New(service string) (*zap.SugaredLogger, error) {
	return NewWithOutput(service, os.Stdout)
}

// NewWithOutput is New, but writing to w instead of stdout; tests use this
// to assert on captured output.
func NewWithOutput(service string, w zapcore.WriteSyncer) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), w, zap.NewAtomicLevelAt(zap.InfoLevel))

	log := zap.New(core, zap.AddCaller()).With(zap.String("service", service))

	return log.Sugar(), nil
}
