package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSlackNotifier_NoAlerts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	if err := n.Notify(context.Background(), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := n.Notify(context.Background(), []Alert{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if called {
		t.Fatal("expected no HTTP request for empty alerts")
	}
}

func TestSlackNotifier_SendsAlerts(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	triggered := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	alerts := []Alert{
		{
			ID:          "confidence-low",
			Condition:   "confidence_low",
			Severity:    SeverityHigh,
			Message:     "recent average confidence 0.310 is below 0.500",
			TriggeredAt: triggered,
		},
		{
			ID:          "confidence-volatile",
			Condition:   "confidence_volatile",
			Severity:    SeverityMedium,
			Message:     "confidence volatility 0.400 exceeds 0.250",
			TriggeredAt: triggered,
		},
	}

	n := NewSlackNotifier(srv.URL)
	if err := n.Notify(context.Background(), alerts); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	var msg slackMessage
	if err := json.Unmarshal(receivedBody, &msg); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}

	// header + section + divider + section
	if len(msg.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(msg.Blocks))
	}
	wantTypes := []string{"header", "section", "divider", "section"}
	for i, want := range wantTypes {
		if msg.Blocks[i].Type != want {
			t.Errorf("block %d: expected type %s, got %s", i, want, msg.Blocks[i].Type)
		}
	}
	if msg.Blocks[0].Text == nil || msg.Blocks[0].Text.Text != "Pattern metrics alerts" {
		t.Errorf("unexpected header text %v", msg.Blocks[0].Text)
	}

	body := string(receivedBody)
	for _, want := range []string{"confidence_low", "confidence_volatile", "2025-01-15 10:30 UTC"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	err := n.Notify(context.Background(), []Alert{{
		ID:          "confidence-low",
		Condition:   "confidence_low",
		Severity:    SeverityHigh,
		Message:     "test alert",
		TriggeredAt: time.Now().UTC(),
	}})
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to contain status code 500, got: %s", err.Error())
	}
}

func TestSlackNotifier_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := NewSlackNotifier(srv.URL)
	err := n.Notify(ctx, []Alert{{ID: "x", Severity: SeverityLow, TriggeredAt: time.Now()}})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSeverityEmoji(t *testing.T) {
	tests := []struct {
		severity AlertSeverity
		emoji    string
	}{
		{SeverityHigh, "\U0001f534"},
		{SeverityMedium, "\U0001f7e1"},
		{SeverityLow, "\U0001f535"},
		{AlertSeverity("unknown"), "❓"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			if got := severityEmoji(tt.severity); got != tt.emoji {
				t.Errorf("severityEmoji(%s) = %q, want %q", tt.severity, got, tt.emoji)
			}
		})
	}
}
