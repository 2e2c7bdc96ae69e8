package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

// NewZap builds the process logger: JSON in production, colored console otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	var zc zap.Config
	if conf.Env == "PROD" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.OutputPaths = []string{"stdout"}
	if conf.TestMode {
		zc.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("app", conf.AppName), zap.String("build", conf.Build)), nil
}
