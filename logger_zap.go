package auth

import "go.uber.org/zap"

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to Logger
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Debug(message string, args ...any) { z.sugar.Debugw(message, args...) }
func (z *zapLogger) Info(message string, args ...any)  { z.sugar.Infow(message, args...) }
func (z *zapLogger) Warn(message string, args ...any)  { z.sugar.Warnw(message, args...) }
func (z *zapLogger) Error(message string, args ...any) { z.sugar.Errorw(message, args...) }

// ZapLoggerProvider returns zap loggers named after the component
type ZapLoggerProvider struct {
	base *zap.Logger
}

// NewZapLoggerProvider builds a LoggerProvider on top of base
func NewZapLoggerProvider(base *zap.Logger) *ZapLoggerProvider {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLoggerProvider{base: base}
}

// GetLogger returns a child logger named name
func (p *ZapLoggerProvider) GetLogger(name string) Logger {
	return NewZapLogger(p.base.Named(name))
}

var _ LoggerProvider = (*ZapLoggerProvider)(nil)
