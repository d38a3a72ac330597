// Package busprobe inspects the D-Bus services that desktop session
// commands rely on. It is used for diagnostics only; command resolution
// never consults the bus.
package busprobe

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	dbusHasOwnerMethod = "org.freedesktop.DBus.NameHasOwner"

	logindDest    = "org.freedesktop.login1"
	logindPath    = "/org/freedesktop/login1"
	logindManager = "org.freedesktop.login1.Manager"
)

// SessionServices are the session-bus names the built-in desktop commands
// talk to.
var SessionServices = []string{
	"org.gnome.ScreenSaver",
	"org.gnome.SessionManager",
	"org.freedesktop.ScreenSaver",
	"org.kde.Shutdown",
}

// LogindQueries are the logind Manager methods answering whether a power
// action is allowed. Each returns "yes", "no", "challenge" or "na".
var LogindQueries = []string{"CanSuspend", "CanHibernate", "CanReboot", "CanPowerOff"}

type Check struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// Prober runs the checks. The zero value is not usable; use New.
type Prober struct {
	hasOwner func(ctx context.Context, name string) (bool, error)
	logind   func(ctx context.Context, method string) (string, error)
	closers  []func() error
}

// New connects to the session and system buses. Connection failures are
// kept and surface as error rows from Run.
func New() *Prober {
	p := &Prober{}

	session, err := dbus.ConnectSessionBus()
	if err != nil {
		sessionErr := fmt.Errorf("could not connect to session bus: %w", err)
		p.hasOwner = func(context.Context, string) (bool, error) { return false, sessionErr }
	} else {
		p.closers = append(p.closers, session.Close)
		p.hasOwner = func(ctx context.Context, name string) (bool, error) {
			var owned bool
			err := session.BusObject().CallWithContext(ctx, dbusHasOwnerMethod, 0, name).Store(&owned)
			if err != nil {
				return false, fmt.Errorf("could not query owner of %s: %w", name, err)
			}
			return owned, nil
		}
	}

	system, err := dbus.ConnectSystemBus()
	if err != nil {
		systemErr := fmt.Errorf("could not connect to system bus: %w", err)
		p.logind = func(context.Context, string) (string, error) { return "", systemErr }
	} else {
		p.closers = append(p.closers, system.Close)
		login1 := system.Object(logindDest, logindPath)
		p.logind = func(ctx context.Context, method string) (string, error) {
			var answer string
			err := login1.CallWithContext(ctx, logindManager+"."+method, 0).Store(&answer)
			if err != nil {
				return "", fmt.Errorf("could not call %s: %w", method, err)
			}
			return answer, nil
		}
	}
	return p
}

// Run reports one row per session service and per logind query.
func (p *Prober) Run(ctx context.Context) []Check {
	checks := make([]Check, 0, len(SessionServices)+len(LogindQueries))
	for _, name := range SessionServices {
		owned, err := p.hasOwner(ctx, name)
		switch {
		case err != nil:
			checks = append(checks, Check{Key: "dbus." + name, Value: err.Error(), Status: "error"})
		case owned:
			checks = append(checks, Check{Key: "dbus." + name, Value: "owned", Status: "ok"})
		default:
			checks = append(checks, Check{Key: "dbus." + name, Value: "not on session bus", Status: "missing"})
		}
	}
	for _, method := range LogindQueries {
		answer, err := p.logind(ctx, method)
		switch {
		case err != nil:
			checks = append(checks, Check{Key: "logind." + method, Value: err.Error(), Status: "error"})
		case answer == "yes" || answer == "challenge":
			checks = append(checks, Check{Key: "logind." + method, Value: answer, Status: "ok"})
		default:
			checks = append(checks, Check{Key: "logind." + method, Value: answer, Status: "unavailable"})
		}
	}
	return checks
}

func (p *Prober) Close() error {
	var firstErr error
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}
