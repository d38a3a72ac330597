package platform

import (
	"os"
	"strings"
)

// DesktopEnvVar names the colon-separated list of desktop environment
// identifiers exported by the session, most specific first.
const DesktopEnvVar = "XDG_CURRENT_DESKTOP"

type Platform int

const (
	Other Platform = iota
	Unix
	Apple
)

func (p Platform) String() string {
	switch p {
	case Unix:
		return "unix"
	case Apple:
		return "apple"
	default:
		return "other"
	}
}

// Current reports the platform this binary was built for.
func Current() Platform {
	return current
}

// Environment is the ambient input to command resolution. It is read once at
// startup and never refreshed.
type Environment struct {
	Platform Platform
	Desktops []string
}

func Detect() Environment {
	return Environment{
		Platform: Current(),
		Desktops: ParseDesktops(os.Getenv(DesktopEnvVar)),
	}
}

// WithDesktops returns a copy of e with the desktop list replaced by raw.
// An empty raw keeps the detected list.
func (e Environment) WithDesktops(raw string) Environment {
	if strings.TrimSpace(raw) == "" {
		return e
	}
	e.Desktops = ParseDesktops(raw)
	return e
}

func (e Environment) DesktopString() string {
	return strings.Join(e.Desktops, ":")
}

// ParseDesktops splits raw on ':' keeping order. Identifiers are compared
// case-sensitively later, so they are not folded here.
func ParseDesktops(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ":")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
