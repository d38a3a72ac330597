package busprobe

import (
	"context"
	"errors"
	"testing"
)

func TestRunReportsEveryService(t *testing.T) {
	p := &Prober{
		hasOwner: func(_ context.Context, name string) (bool, error) {
			return name == "org.gnome.ScreenSaver", nil
		},
		logind: func(_ context.Context, method string) (string, error) {
			switch method {
			case "CanHibernate":
				return "na", nil
			case "CanReboot":
				return "challenge", nil
			default:
				return "yes", nil
			}
		},
	}

	checks := p.Run(context.Background())
	if len(checks) != len(SessionServices)+len(LogindQueries) {
		t.Fatalf("unexpected check count %d", len(checks))
	}
	byKey := map[string]Check{}
	for _, check := range checks {
		byKey[check.Key] = check
	}
	if byKey["dbus.org.gnome.ScreenSaver"].Status != "ok" {
		t.Fatalf("expected gnome screensaver ok, got %+v", byKey["dbus.org.gnome.ScreenSaver"])
	}
	if byKey["dbus.org.kde.Shutdown"].Status != "missing" {
		t.Fatalf("expected kde shutdown missing, got %+v", byKey["dbus.org.kde.Shutdown"])
	}
	if byKey["logind.CanHibernate"].Status != "unavailable" {
		t.Fatalf("expected hibernate unavailable, got %+v", byKey["logind.CanHibernate"])
	}
	if byKey["logind.CanReboot"].Status != "ok" {
		t.Fatalf("expected challenge to count as ok, got %+v", byKey["logind.CanReboot"])
	}
}

func TestRunTurnsBusErrorsIntoRows(t *testing.T) {
	busErr := errors.New("no bus")
	p := &Prober{
		hasOwner: func(context.Context, string) (bool, error) { return false, busErr },
		logind:   func(context.Context, string) (string, error) { return "", busErr },
	}
	for _, check := range p.Run(context.Background()) {
		if check.Status != "error" || check.Value != "no bus" {
			t.Fatalf("expected error row, got %+v", check)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close without connections failed: %v", err)
	}
}
