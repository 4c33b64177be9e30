package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		enabled []zapcore.Level
		dropped []zapcore.Level
	}{
		{"error", []zapcore.Level{zapcore.ErrorLevel}, []zapcore.Level{zapcore.WarnLevel, zapcore.InfoLevel, zapcore.DebugLevel}},
		{"warn", []zapcore.Level{zapcore.ErrorLevel, zapcore.WarnLevel}, []zapcore.Level{zapcore.InfoLevel, zapcore.DebugLevel}},
		{"", []zapcore.Level{zapcore.WarnLevel, zapcore.InfoLevel}, []zapcore.Level{zapcore.DebugLevel}},
		{"debug", []zapcore.Level{zapcore.InfoLevel, zapcore.DebugLevel}, nil},
	}

	for _, tt := range tests {
		t.Run("level="+tt.level, func(t *testing.T) {
			l, err := New(tt.level, FileConfig{Path: filepath.Join(t.TempDir(), "out.log")}, false)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			for _, lvl := range tt.enabled {
				if !l.Core().Enabled(lvl) {
					t.Errorf("%s should be enabled", lvl)
				}
			}
			for _, lvl := range tt.dropped {
				if l.Core().Enabled(lvl) {
					t.Errorf("%s should be dropped", lvl)
				}
			}
		})
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "convert.log")
	if err := InitWithFileConfig("warn", FileConfig{Path: logFile, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("chunk decoded")
	Warn("material key unavailable")
	Error("conversion failed")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(content)
	for _, want := range []string{"WARN", "material key unavailable", "ERROR", "conversion failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output", want)
		}
	}
	if strings.Contains(out, "chunk decoded") {
		t.Error("info entry should be filtered at warn level")
	}
}

func TestNamed(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "named.log")
	if err := InitWithFileConfig("info", FileConfig{Path: logFile, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Named("resolver").Info("chunk decoded")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "resolver") {
		t.Errorf("expected logger name in output: %s", content)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("loud", FileConfig{}, false); err == nil {
		t.Error("expected error for unknown level")
	}

	l, err := New("", FileConfig{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// No outputs configured: a no-op logger that is safe to use.
	l.Info("dropped")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")

	if cfg.Path != "/tmp/test.log" {
		t.Errorf("expected path /tmp/test.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
