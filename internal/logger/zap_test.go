package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		DebugLevel: zapcore.DebugLevel,
		"bogus":    defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestNew_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coffeebot.log")
	log := New(Options{Level: InfoLevel, File: path})
	log.Infow("brew_accepted", "ready_at", "2024-01-01T00:00:00Z")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("expected log file to contain the entry")
	}
}
