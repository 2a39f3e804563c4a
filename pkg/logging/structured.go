package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/snow-ghost/knapsack/pkg/tracing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger with run-oriented helpers
type Logger struct {
	zap *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout", "stderr" or a file path
	AddCaller bool
	AddStack  bool
}

// DefaultConfig logs info and above to stderr in console format, keeping
// stdout free for reports.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: "stderr"}
}

// NewLogger creates a new structured logger
func NewLogger(config Config) (*Logger, error) {
	if config.Format == "" {
		config.Format = "console"
	}
	if config.Output == "" {
		config.Output = "stderr"
	}
	if config.Format != "json" && config.Format != "console" {
		return nil, fmt.Errorf("unsupported log format: %s", config.Format)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	zapConfig.Encoding = config.Format
	zapConfig.OutputPaths = []string{config.Output}
	zapConfig.ErrorOutputPaths = []string{config.Output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if config.Format == "console" {
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{zap: zapLogger}, nil
}

// New wraps an existing zap logger
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zap: z}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return New(zap.NewNop())
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// WithRunID adds run ID to logger context
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("run_id", runID))}
}

// WithFields adds fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	return &Logger{zap: l.zap.With(zapFields...)}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.zap.Debug(msg, convertToZapFields(args)...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.zap.Info(msg, convertToZapFields(args)...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zap.Warn(msg, convertToZapFields(args)...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.zap.Error(msg, convertToZapFields(args)...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.zap.Fatal(msg, convertToZapFields(args)...)
}

// convertToZapFields converts interface{} args to zap.Field
func convertToZapFields(args []interface{}) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}
	return fields
}

// LogRun logs a finished GA run, tagged with the trace of ctx when there is one
func (l *Logger) LogRun(ctx context.Context, testID int, runID string, bestFitness, averageFitness float64, feasible bool, duration time.Duration) {
	fields := map[string]interface{}{
		"test_id":         testID,
		"best_fitness":    bestFitness,
		"average_fitness": averageFitness,
		"feasible":        feasible,
		"duration_ms":     float64(duration.Nanoseconds()) / 1e6,
	}

	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		fields["trace_id"] = traceID
	}

	logger := l.WithRunID(runID).WithFields(fields)
	if feasible {
		logger.Info("GA run completed")
	} else {
		logger.Warn("GA run completed with infeasible best solution")
	}
}

// LogGeneration logs a generation summary
func (l *Logger) LogGeneration(ctx context.Context, generation int, best, mean, globalBest float64, feasible, size int) {
	l.zap.Info("generation",
		zap.Int("generation", generation),
		zap.Float64("best", best),
		zap.Float64("mean", mean),
		zap.Float64("global_best", globalBest),
		zap.Int("feasible", feasible),
		zap.Int("size", size),
	)
}

// Sync syncs the logger
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetZap returns the zap logger
func (l *Logger) GetZap() *zap.Logger {
	return l.zap
}
