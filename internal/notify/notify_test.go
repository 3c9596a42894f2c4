package notify

import (
	"testing"

	"github.com/example/snaplate/internal/config"
)

func TestLoadPreferencesOverrides(t *testing.T) {
	t.Setenv("SNAPLATE_NOTIFY_TITLE", "Shots")
	t.Setenv("SNAPLATE_NOTIFY_SAVE_TEXT", "Wrote %s")

	prefs := LoadPreferences()
	if prefs.Title != "Shots" {
		t.Fatalf("Title = %q", prefs.Title)
	}
	if got := prefs.Events[EventSave].Template; got != "Wrote %s" {
		t.Fatalf("save template = %q", got)
	}
	if got := prefs.Events[EventCapture].Template; got != "Captured %s" {
		t.Fatalf("capture template should keep default, got %q", got)
	}
}

func TestEventsDisabledByDefault(t *testing.T) {
	n := New(DefaultPreferences())
	for _, ev := range []Event{EventCapture, EventSave, EventCopy} {
		if n.enabledFor(ev) {
			t.Fatalf("event %s enabled without configuration", ev)
		}
	}

	n = FromConfig(config.Notify{Save: true})
	if n.enabledFor(EventCapture) || n.enabledFor(EventCopy) {
		t.Fatal("only save should be enabled")
	}
	if !n.enabledFor(EventSave) {
		t.Fatal("save should be enabled")
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.Enable(EventSave, true)
	n.Save("/tmp/x.png")
	n.Copy("")
	n.Capture("display", nil)
}
