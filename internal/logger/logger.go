package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger from LogConfig. Console output is always on;
// file output with rotation is added when a log file path is configured.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return zerolog.Logger{}, errorwrapper.WrapError(err, "parsing log level")
	}

	writers := []io.Writer{consoleWriter(cfg.LogFormat)}
	if cfg.LogFile != "" {
		writers = append(writers, fileWriter(cfg))
	}

	multi := zerolog.MultiLevelWriter(writers...)
	log := zerolog.New(multi).Level(level).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(level)
	stdlog.SetOutput(log)
	stdlog.SetFlags(0)

	return log, nil
}

func consoleWriter(format string) io.Writer {
	if format == "json" {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
}

func fileWriter(cfg config.LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxLogSizeMB,
		MaxBackups: cfg.MaxLogBackups,
		Compress:   true,
	}
}
