package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"doctransfer/internal/config"
)

const envProd = "prod"

// New builds the application logger. Production uses JSON output at info level,
// every other environment uses the development console encoder at debug level.
func New(cfg *config.AppConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Env == envProd {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.EncoderConfig.FunctionKey = "func"
	zapConfig.EncoderConfig.TimeKey = "ts"
	zapConfig.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	log, err := zapConfig.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}

	return log.With(zap.String("env", cfg.Env)), nil
}
