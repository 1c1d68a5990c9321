package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unkn0wn-root/settings"
	"github.com/unkn0wn-root/settings/config"
	logruslog "github.com/unkn0wn-root/settings/log/logrus"
	slogadapter "github.com/unkn0wn-root/settings/log/slog"
	zaplog "github.com/unkn0wn-root/settings/log/zap"
	zerologadapter "github.com/unkn0wn-root/settings/log/zerolog"
)

// NewLogger builds a zap logger from the log block. A file path switches
// output from stderr to a lumberjack rolling file.
func NewLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %s is not supported", cfg.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, errors.Errorf("log format %s is not supported", cfg.Format)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if cfg.File != "" {
		out = zapcore.AddSync(rollingFile(cfg))
	}

	return zap.New(zapcore.NewCore(enc, out, level)), nil
}

// NewSettingsLogger builds the settings.Logger named by log.backend on the
// same output rules as NewLogger. The returned func flushes and releases
// the output.
func NewSettingsLogger(cfg config.Log) (settings.Logger, func() error, error) {
	format := strings.ToLower(cfg.Format)
	if format != "" && format != "console" && format != "json" {
		return nil, nil, errors.Errorf("log format %s is not supported", cfg.Format)
	}
	asJSON := format == "json"
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	badLevel := func(err error) error {
		return errors.Wrapf(err, "log level %s is not supported", cfg.Level)
	}

	switch strings.ToLower(cfg.Backend) {
	case "zap", "":
		l, err := NewLogger(cfg)
		if err != nil {
			return nil, nil, err
		}
		// Sync on a terminal stderr fails on some platforms
		return zaplog.ZapLogger{L: l}, func() error { _ = l.Sync(); return nil }, nil

	case "zerolog":
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, nil, badLevel(err)
		}
		w, release := output(cfg)
		if !asJSON {
			w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
		}
		l := zerolog.New(w).Level(level).With().Timestamp().Logger()
		return zerologadapter.Logger{L: l}, release, nil

	case "logrus":
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, badLevel(err)
		}
		w, release := output(cfg)
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(level)
		if asJSON {
			l.SetFormatter(&logrus.JSONFormatter{})
		} else {
			l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		}
		return logruslog.LogrusLogger{E: logrus.NewEntry(l)}, release, nil

	case "slog":
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, badLevel(err)
		}
		w, release := output(cfg)
		opts := &slog.HandlerOptions{Level: level}
		var h slog.Handler = slog.NewTextHandler(w, opts)
		if asJSON {
			h = slog.NewJSONHandler(w, opts)
		}
		return slogadapter.Logger{L: slog.New(h)}, release, nil
	}
	return nil, nil, errors.Errorf("log backend %s is not supported", cfg.Backend)
}

func output(cfg config.Log) (io.Writer, func() error) {
	if cfg.File == "" {
		return os.Stderr, func() error { return nil }
	}
	f := rollingFile(cfg)
	return f, f.Close
}

func rollingFile(cfg config.Log) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
}
