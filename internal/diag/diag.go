// Package diag wires structured logging for the CLI driver: startup/
// shutdown, recovered panics, and TRON trace lines. The interpreter core
// itself never imports this package — logging on the statement-execution
// hot path would perturb PRINT's column tracking and RND's draw sequence,
// both of which are pure functions of the Runtime today.
package diag

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin wrapper over a SugaredLogger so callers don't reach for
// go.uber.org/zap directly outside this package.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a console-encoded logger at debug level when trace is true,
// info level otherwise.
func New(trace bool) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder

	level := zapcore.InfoLevel
	if trace {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		&zapcore.BufferedWriteSyncer{WS: os.Stderr, FlushInterval: time.Second},
		level,
	)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// Stmt logs one TRON trace line: the statement address about to execute.
func (l *Logger) Stmt(line, stmt int) {
	l.Debugw("stmt", "line", line, "stmt", stmt)
}

// Trapped logs a BasicError caught at the top level (uncaught by ON ERROR).
func (l *Logger) Trapped(code int, line int, msg string) {
	l.Errorw("trapped error", "code", code, "line", line, "message", msg)
}

// Recovered logs a panic recovered by the driver, with the position the
// interpreter was at when it happened.
func (l *Logger) Recovered(r interface{}, line, stmt int) {
	l.Errorw("recovered panic", "line", line, "stmt", stmt, "panic", r)
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
