package framegraph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler keeps every record it receives.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *captureHandler) WithGroup(string) slog.Handler            { return h }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.records = append(h.records, r.Clone())
	h.mu.Unlock()
	return nil
}

// find returns the first record with msg and its attributes.
func (h *captureHandler) find(msg string) (slog.Level, map[string]slog.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message != msg {
			continue
		}
		attrs := make(map[string]slog.Value)
		r.Attrs(func(a slog.Attr) bool {
			attrs[a.Key] = a.Value
			return true
		})
		return r.Level, attrs, true
	}
	return 0, nil, false
}

// captureLogs routes framegraph logging into a captureHandler for the
// duration of the test.
func captureLogs(t *testing.T) *captureHandler {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	h := &captureHandler{}
	SetLogger(slog.New(h))
	return h
}

func TestDefaultLoggerSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(slog.Default())
	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
	h := nopHandler{}
	if h.WithGroup("g") != (nopHandler{}) || h.WithAttrs(nil) != (nopHandler{}) {
		t.Error("nopHandler derivations should stay nopHandler")
	}
}

func TestValidateAndBuildLogSummaries(t *testing.T) {
	h := captureLogs(t)

	e := newTestEnv(t)
	tgt := e.target("T", 16, 16)
	e.pass("P1", tgt)
	e.pass("P2", PrimaryHandle, tgt)
	e.frame(t, 16, 16)

	level, attrs, ok := h.find("framegraph: validated")
	if !ok {
		t.Fatal("no validation summary logged")
	}
	if level != slog.LevelDebug {
		t.Errorf("validation summary level = %v, want DEBUG", level)
	}
	if got := attrs["scheduled"].Int64(); got != 2 {
		t.Errorf("scheduled = %d, want 2", got)
	}
	if got := attrs["levels"].Int64(); got != 2 {
		t.Errorf("levels = %d, want 2", got)
	}

	_, attrs, ok = h.find("framegraph: built")
	if !ok {
		t.Fatal("no build summary logged")
	}
	if got := attrs["frame"].Uint64(); got != 0 {
		t.Errorf("frame = %d, want 0", got)
	}
	if got := attrs["acquired"].Int64(); got != 1 {
		t.Errorf("acquired = %d, want 1", got)
	}
}

func TestBuildFailureLogsWarning(t *testing.T) {
	h := captureLogs(t)

	e := newTestEnv(t)
	e.targets.failOn = "T"
	tgt := e.target("T", 16, 16)
	e.pass("P1", tgt)
	e.pass("P2", PrimaryHandle, tgt)
	if err := e.g.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := e.g.Build(e.ct, 16, 16); !errors.Is(err, ErrAcquireFailed) {
		t.Fatalf("Build() error = %v, want ErrAcquireFailed", err)
	}

	level, attrs, ok := h.find("framegraph: build failed")
	if !ok {
		t.Fatal("no failure logged")
	}
	if level != slog.LevelWarn {
		t.Errorf("failure level = %v, want WARN", level)
	}
	if err, _ := attrs["err"].Any().(error); !errors.Is(err, ErrAcquireFailed) {
		t.Errorf("err attr = %v, want ErrAcquireFailed", attrs["err"])
	}
	if _, _, ok := h.find("framegraph: built"); ok {
		t.Error("failed frame logged a build summary")
	}
}

func TestTruncatedCycleLogsWarning(t *testing.T) {
	h := captureLogs(t)

	e := newTestEnv(t)
	x := e.target("X", 8, 8)
	y := e.target("Y", 8, 8)
	e.pass("P1", x, y)
	e.pass("P2", y, x)
	e.pass("P3", PrimaryHandle, x)
	e.frame(t, 8, 8)

	level, attrs, ok := h.find("framegraph: dependency cycle truncated")
	if !ok {
		t.Fatal("no cycle warning logged")
	}
	if level != slog.LevelWarn {
		t.Errorf("cycle warning level = %v, want WARN", level)
	}
	if got := attrs["edges"].Int64(); got < 1 {
		t.Errorf("edges = %d, want at least 1", got)
	}
}

func TestDestroyLogsFrameCount(t *testing.T) {
	h := captureLogs(t)

	e := newTestEnv(t)
	for range 3 {
		e.pass("P", PrimaryHandle)
		e.frame(t, 4, 4)
	}
	e.g.Destroy()

	level, attrs, ok := h.find("framegraph: destroyed")
	if !ok {
		t.Fatal("Destroy() logged nothing")
	}
	if level != slog.LevelInfo {
		t.Errorf("level = %v, want INFO", level)
	}
	if got := attrs["frames"].Uint64(); got != 3 {
		t.Errorf("frames = %d, want 3", got)
	}
}

func TestSetLoggerConcurrentWithBuild(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	e := newTestEnv(t)
	h := &captureHandler{}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 100 {
			SetLogger(slog.New(h))
			SetLogger(nil)
		}
	}()
	for range 20 {
		e.pass("P", PrimaryHandle)
		e.frame(t, 4, 4)
	}
	wg.Wait()
}
