package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var l = newDefault()

func newDefault() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	lg, _ := cfg.Build(zap.AddCallerSkip(1))
	return lg
}

// Init 按配置等级重建全局 logger
func Init(level string) error {
	lv, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lv)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	lg, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	l = lg
	return nil
}

func Debug(msg string, fields ...zap.Field) { l.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { l.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { l.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { l.Error(msg, fields...) }

// Sync flush 缓冲日志，进程退出前调用
func Sync() { _ = l.Sync() }
