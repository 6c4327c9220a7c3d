package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Info(context.Background(), "rated",
		String("beatmap_id", "abc"),
		Float64("stars", 4.5),
		Bool("passed", true),
		Duration("took", 3*time.Millisecond),
	)

	out := buf.String()
	for _, want := range []string{"msg=rated", "beatmap_id=abc", "stars=4.5", "passed=true", "took=3ms", "source=logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf), WithJSON()); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("worker").Warn(context.Background(), "slow job")

	if !strings.Contains(buf.String(), `"logger":"worker"`) {
		t.Errorf("named logger output missing name: %s", buf.String())
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer SetLevel(0)

	if err := SetLevelString("error"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at error level: %s", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
