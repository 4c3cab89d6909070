package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a logger for the environment and installs it as zap's global.
func Init(environment string) error {
	l, err := New(environment)
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(l)

	return nil
}

// New returns a JSON production logger, or a console logger for development and test.
func New(environment string) (*zap.Logger, error) {
	var conf zap.Config
	switch environment {
	case "production", "staging":
		conf = zap.NewProductionConfig()
		conf.EncoderConfig.TimeKey = "timestamp"
		conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "development", "test", "":
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q", environment)
	}

	l, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("conf.Build -> %w", err)
	}

	return l, nil
}
