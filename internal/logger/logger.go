package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the process logger is built.
type Options struct {
	Level      string
	File       string // rotated log file, stdout only when empty
	Production bool
	MaxSizeMB  int
	MaxAgeDays int
}

func buildLumberjackSyncer(opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxAge := opts.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 7
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: 7,
		MaxAge:     maxAge,
	}
}

// New builds a zap logger and installs it as the global logger.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	var encoder zapcore.Encoder
	if opts.Production {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	syncer := zapcore.AddSync(os.Stdout)
	if opts.File != "" {
		syncer = zapcore.NewMultiWriteSyncer(syncer, zapcore.AddSync(buildLumberjackSyncer(opts)))
	}

	l := zap.New(zapcore.NewCore(encoder, syncer, level), zap.AddCaller())
	zap.ReplaceGlobals(l)
	return l, nil
}
