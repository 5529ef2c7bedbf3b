package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"note-trainer/config"
)

var (
	file    *os.File
	mu      sync.Mutex
	logger  = zap.NewNop()
	enabled bool
)

// Enable starts debug logging to ~/.config/note-trainer/debug.log.
// The TUI owns the terminal, so nothing is written to stderr.
func Enable(level zapcore.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("debug log dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("debug log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}

	file = f
	install(zapcore.AddSync(f), level)
	logger.Named("debug").Info("=== Debug logging started ===")
	return nil
}

// EnableStderr logs to stderr, for headless commands
func EnableStderr(level zapcore.Level) {
	mu.Lock()
	defer mu.Unlock()
	install(zapcore.Lock(os.Stderr), level)
}

func install(ws zapcore.WriteSyncer, level zapcore.Level) {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), ws, level)
	logger = zap.New(core)
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	logger.Sync()
	logger = zap.NewNop()
	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// L returns the current logger. It is a no-op logger while disabled.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a printf-style debug message under a category
func Log(category, format string, args ...any) {
	l := L()
	if ce := l.Check(zapcore.DebugLevel, ""); ce == nil {
		return
	}
	l.Named(category).Debug(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
