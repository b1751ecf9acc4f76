package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log atomic.Pointer[zap.Logger]

func init() {
	log.Store(zap.NewNop())
}

type Config struct {
	Level       string
	Development bool
}

func Init(conf Config) error {
	var zc zap.Config
	if conf.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if len(conf.Level) > 0 {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(conf.Level)); err != nil {
			return err
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	log.Store(l)
	return nil
}

// SetLogger replaces the package logger.
func SetLogger(l *zap.Logger) {
	log.Store(l.WithOptions(zap.AddCallerSkip(1)))
}

func Sync() error {
	return log.Load().Sync()
}

func Debug(msg string, fields ...zap.Field) {
	log.Load().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Load().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Load().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Load().Error(msg, fields...)
}
