package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestEventLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestEventLog_WriteAndRead(t *testing.T) {
	log, _ := newTestEventLog(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Time:    now,
			Level:   "INFO",
			Type:    EventPatternRecorded,
			Message: "pattern recorded",
			Data:    map[string]any{"pattern_type": "recursion", "confidence": 0.8},
		},
		{
			Time:    now.Add(time.Second),
			Level:   "WARN",
			Type:    EventAlertTriggered,
			Message: "confidence dropped",
			Data:    map[string]any{"condition": "confidence_low"},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	if result[0].Type != EventPatternRecorded {
		t.Errorf("expected type %s, got %s", EventPatternRecorded, result[0].Type)
	}
	if result[0].Data["pattern_type"] != "recursion" {
		t.Errorf("expected pattern_type recursion, got %v", result[0].Data["pattern_type"])
	}
	if result[1].Level != "WARN" {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
}

func TestEventLog_StampsZeroTime(t *testing.T) {
	log, _ := newTestEventLog(t)

	before := time.Now().UTC().Add(-time.Second)
	if err := log.Write(Event{Level: "INFO", Type: EventIngestCompleted, Message: "ingest"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result))
	}
	if result[0].Time.Before(before) {
		t.Errorf("expected event time to be stamped, got %v", result[0].Time)
	}
}

func TestEventLog_FilterByType(t *testing.T) {
	log, _ := newTestEventLog(t)

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: EventPatternRecorded, Message: "recorded"},
		{Time: now.Add(time.Second), Level: "INFO", Type: EventIngestCompleted, Message: "ingested"},
		{Time: now.Add(2 * time.Second), Level: "INFO", Type: EventPatternRecorded, Message: "another recorded"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Type: EventPatternRecorded})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events of type %s, got %d", EventPatternRecorded, len(result))
	}
	for _, e := range result {
		if e.Type != EventPatternRecorded {
			t.Errorf("expected type %s, got %s", EventPatternRecorded, e.Type)
		}
	}
}

func TestEventLog_FilterByTimeRange(t *testing.T) {
	log, _ := newTestEventLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Level: "INFO", Type: EventPatternRecorded, Message: "first"},
		{Time: base.Add(time.Hour), Level: "INFO", Type: EventPatternRecorded, Message: "second"},
		{Time: base.Add(2 * time.Hour), Level: "INFO", Type: EventPatternRecorded, Message: "third"},
		{Time: base.Add(3 * time.Hour), Level: "INFO", Type: EventPatternRecorded, Message: "fourth"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	since := base.Add(30 * time.Minute)
	until := base.Add(2*time.Hour + 30*time.Minute)
	result, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events in time range, got %d", len(result))
	}
	if result[0].Message != "second" {
		t.Errorf("expected 'second', got %s", result[0].Message)
	}
	if result[1].Message != "third" {
		t.Errorf("expected 'third', got %s", result[1].Message)
	}
}

func TestEventLog_FilterByLevel(t *testing.T) {
	log, _ := newTestEventLog(t)

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: EventPatternRecorded, Message: "info event"},
		{Time: now.Add(time.Second), Level: "WARN", Type: EventAlertTriggered, Message: "warn event"},
		{Time: now.Add(2 * time.Second), Level: "ERROR", Type: EventIngestCompleted, Message: "error event"},
		{Time: now.Add(3 * time.Second), Level: "WARN", Type: EventAlertTriggered, Message: "another warn"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Level: "WARN"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 WARN events, got %d", len(result))
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	log, path := newTestEventLog(t)

	if err := log.Write(Event{Level: "INFO", Type: EventPatternRecorded, Message: "ok"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log for corruption: %v", err)
	}
	if _, err := f.WriteString("{not json\n\n"); err != nil {
		t.Fatalf("corrupting log: %v", err)
	}
	_ = f.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("expected malformed line to be skipped, got %d events", len(result))
	}
}

func TestEventLog_EmptyLog(t *testing.T) {
	log, _ := newTestEventLog(t)

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading empty log: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected 0 events from empty log, got %d", len(result))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	log, _ := newTestEventLog(t)

	const goroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				event := Event{
					Time:    time.Now().UTC(),
					Level:   "INFO",
					Type:    EventPatternRecorded,
					Message: "concurrent event",
					Data:    map[string]any{"goroutine": id, "index": i},
				}
				if err := log.Write(event); err != nil {
					t.Errorf("concurrent write error: %v", err)
				}
			}
		}(g)
	}

	wg.Wait()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events after concurrent writes: %v", err)
	}

	expected := goroutines * eventsPerGoroutine
	if len(result) != expected {
		t.Errorf("expected %d events, got %d", expected, len(result))
	}
}

func TestEventLog_SharedFileAcrossHandles(t *testing.T) {
	first, path := newTestEventLog(t)
	second, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("opening second handle: %v", err)
	}
	defer second.Close()

	var wg sync.WaitGroup
	for _, log := range []EventLog{first, second} {
		wg.Add(1)
		go func(log EventLog) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := log.Write(Event{Level: "INFO", Type: EventIngestCompleted, Message: "shared"}); err != nil {
					t.Errorf("write error: %v", err)
				}
			}
		}(log)
	}
	wg.Wait()

	result, err := first.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 100 {
		t.Errorf("expected 100 intact events from both handles, got %d", len(result))
	}
}
