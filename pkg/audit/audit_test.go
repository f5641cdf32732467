package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netfleet/netfleet/pkg/fleet"
)

func TestEvent_New(t *testing.T) {
	event := NewEvent("alice", "GetVersion")

	if event.User != "alice" {
		t.Errorf("User = %q, want %q", event.User, "alice")
	}
	if event.Operation != "GetVersion" {
		t.Errorf("Operation = %q, want %q", event.Operation, "GetVersion")
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEvent_WithResponse(t *testing.T) {
	resp := &fleet.Response{
		Summary: fleet.Summary{Total: 3, Succeeded: 3, Healthy: 3},
		Elapsed: 2 * time.Second,
	}
	event := NewEvent("alice", "GetVersion").
		WithTargets([]string{"leaf1", "leaf2", "leaf3"}).
		WithResponse(resp)

	if !event.Success {
		t.Error("Success should be true when nothing failed")
	}
	if event.Duration != 2*time.Second {
		t.Errorf("Duration = %v", event.Duration)
	}
	if len(event.Targets) != 3 {
		t.Errorf("Targets = %v", event.Targets)
	}

	failed := NewEvent("alice", "GetVersion").WithResponse(&fleet.Response{
		Summary: fleet.Summary{Total: 3, Succeeded: 2, Failed: 1},
	})
	if failed.Success {
		t.Error("Success should be false when any device failed")
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent("alice", "GetVersion").WithError(errors.New("boom"))

	if event.Success {
		t.Error("Success should be false")
	}
	if event.Error != "boom" {
		t.Errorf("Error = %q", event.Error)
	}

	event2 := NewEvent("alice", "GetVersion").WithError(nil)
	if event2.Success {
		t.Error("Success should be false even with nil error")
	}
	if event2.Error != "" {
		t.Errorf("Error should be empty with nil error, got %q", event2.Error)
	}
}

func TestFileLogger_LogAndQuery(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	events := []*Event{
		NewEvent("alice", "GetVersion").WithResponse(&fleet.Response{Summary: fleet.Summary{Total: 1, Succeeded: 1}}),
		NewEvent("bob", "GetRoutes").WithError(errors.New("inventory missing")),
		NewEvent("alice", "GetRoutes").WithResponse(&fleet.Response{Summary: fleet.Summary{Total: 2, Succeeded: 2}}),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	all, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Query returned %d events, want 3", len(all))
	}

	alice, err := logger.Query(Filter{User: "alice"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(alice) != 2 {
		t.Errorf("user filter returned %d events, want 2", len(alice))
	}

	routes, err := logger.Query(Filter{Operation: "GetRoutes"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(routes) != 2 {
		t.Errorf("operation filter returned %d events, want 2", len(routes))
	}

	failures, err := logger.Query(Filter{FailureOnly: true})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(failures) != 1 || failures[0].User != "bob" {
		t.Errorf("failure filter returned %+v, want bob's event only", failures)
	}

	limited, err := logger.Query(Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Operation != "GetRoutes" {
		t.Errorf("offset+limit returned %+v", limited)
	}
}

func TestFileLogger_QueryMissingFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	os.Remove(logPath)
	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Query on missing file returned %d events", len(events))
	}
}

func TestFileLogger_SkipsMalformedLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if err := logger.Log(NewEvent("alice", "GetVersion")); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	f.WriteString("{truncated json\n")
	f.Close()
	if err := logger.Log(NewEvent("bob", "GetRoutes")); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Query returned %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{MaxSize: 256, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	for i := 0; i < 20; i++ {
		if err := logger.Log(NewEvent("alice", "GetVersion").WithTargets([]string{"leaf1", "leaf2"})); err != nil {
			t.Fatalf("Log %d failed: %v", i, err)
		}
	}

	matches, err := filepath.Glob(logPath + ".*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Error("expected rotated log files")
	}
}

func TestDefaultLogger(t *testing.T) {
	// No default set: must be a silent no-op.
	SetDefaultLogger(nil)
	Log(NewEvent("alice", "GetVersion"))

	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	SetDefaultLogger(logger)
	defer SetDefaultLogger(nil)
	Log(NewEvent("alice", "GetVersion"))

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("default logger recorded %d events, want 1", len(events))
	}
}
