package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LoggerContextKey ContextKey = "request.logger"
	megabyte                    = 1 << 20
)

// LogFileWriter writes logs into a file it replaces with a fresh one
// once the current file would grow past the configured size in MB.
// It is safe for concurrent use and satisfies zapcore.WriteSyncer.
type LogFileWriter struct {
	mu     sync.Mutex
	clock  Clocker
	file   *os.File
	folder string
	limit  int64
	size   int64
	isProd bool
}

func NewLogFileWriter(config *Config, clock Clocker) *LogFileWriter {
	return &LogFileWriter{
		clock:  clock,
		folder: config.LogFolder,
		limit:  int64(config.LogMaxSize) * megabyte,
		isProd: config.IsProduction,
	}
}

func (lw *LogFileWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if int64(len(p)) > lw.limit {
		return 0, fmt.Errorf("logging: entry of %d bytes exceeds max file size of %d bytes", len(p), lw.limit)
	}
	if lw.file == nil || lw.size+int64(len(p)) > lw.limit {
		if err := lw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := lw.file.Write(p)
	lw.size += int64(n)
	return n, err
}

// rotate closes the current file if any and opens a new one.
func (lw *LogFileWriter) rotate() error {
	if lw.file != nil {
		if err := lw.file.Close(); err != nil {
			return err
		}
		lw.file = nil
	}
	path := CreateLogFilePath(lw.folder, lw.isProd, lw.clock.Now())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	lw.file, lw.size = file, 0
	return nil
}

func (lw *LogFileWriter) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.file == nil {
		return nil
	}
	return lw.file.Sync()
}

func (lw *LogFileWriter) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.file == nil {
		return nil
	}
	err := lw.file.Close()
	lw.file = nil
	return err
}

// consoleSyncer skips Sync on terminals where fsync is not supported.
type consoleSyncer struct {
	io.Writer
}

func (consoleSyncer) Sync() error { return nil }

// SetupLogging builds the application logger. Entries always go as json to w.
// Outside production they are also printed to stdout in console format.
// Only fatal entries carry a stacktrace. The returned function flushes logs.
func SetupLogging(config *Config, w zapcore.WriteSyncer, clock Clocker) (*zap.Logger, func() error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	if !config.IsProduction {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "lvl"
	encoderConfig.NameKey = "name"
	encoderConfig.MessageKey = "msg"
	encoderConfig.CallerKey = "caller"
	encoderConfig.StacktraceKey = "skt"

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), w, config.LogLevel),
	}
	if !config.IsProduction {
		stdout := zapcore.Lock(consoleSyncer{os.Stdout})
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), stdout, config.LogLevel))
	}

	logger := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.FatalLevel),
		zap.WithClock(zapClock{clock}),
	).With(
		zap.String("app.commit", config.GitCommit),
		zap.String("app.tag", config.GitTag),
		zap.String("app.built", config.BuildTime),
	)

	flusher := func() error {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("[flush logs]: %w", err)
		}
		return nil
	}
	return logger, flusher
}

// GetLoggerFromContext returns the request scoped logger set by the core
// middleware or the application logger when there is none.
func (api *APIHandler) GetLoggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*zap.Logger); ok {
		return logger
	}
	return api.logger
}

// CreateLogFilePath names a log file after its creation time and environment.
func CreateLogFilePath(folder string, isProd bool, t time.Time) string {
	env := "dev"
	if isProd {
		env = "prod"
	}
	return filepath.Join(folder, t.Format("20060102.150405")+"."+env+".log")
}
