// Package resolver picks the native command for a session-control intent
// from the build platform and the session's desktop environment list.
//
// Resolution is pure: it reads only the Environment it is given and never
// runs anything. An intent with no known command resolves to "".
package resolver

import (
	"github.com/ashwch/sessionctl/internal/catalog"
	"github.com/ashwch/sessionctl/internal/platform"
)

const (
	SourceStatic  = "static"
	SourceGeneric = "generic"
)

// Resolution is a resolved command together with the rule set that
// produced it: a desktop identifier, SourceStatic, SourceGeneric or "".
type Resolution struct {
	Intent  catalog.Intent
	Command string
	Source  string
}

// Resolve returns the default command for intent in env.
func Resolve(env platform.Environment, intent catalog.Intent) string {
	return Explain(env, intent).Command
}

func Explain(env platform.Environment, intent catalog.Intent) Resolution {
	res := Resolution{Intent: intent}
	switch env.Platform {
	case platform.Apple:
		if command, ok := appleCommands[intent]; ok {
			res.Command = command
			res.Source = SourceStatic
		}
	case platform.Unix:
		for _, desktop := range env.Desktops {
			rules, ok := lookupDesktop(desktop)
			if !ok {
				continue
			}
			// Desktops that leave power management to the system daemon
			// have no rule here; the next identifier gets a chance.
			if command, ok := rules.commands[intent]; ok {
				res.Command = command
				res.Source = desktop
				return res
			}
		}
		if command, ok := unixGeneric[intent]; ok {
			res.Command = command
			res.Source = SourceGeneric
		}
	}
	return res
}

// NewDefaults resolves every intent once. The result is handed to the
// catalog and not recomputed for the life of the process.
func NewDefaults(env platform.Environment, intents []catalog.Intent) catalog.Defaults {
	defaults := make(catalog.Defaults, len(intents))
	for _, intent := range intents {
		defaults[intent] = Resolve(env, intent)
	}
	return defaults
}

// ExplainAll resolves intents in order.
func ExplainAll(env platform.Environment, intents []catalog.Intent) []Resolution {
	out := make([]Resolution, 0, len(intents))
	for _, intent := range intents {
		out = append(out, Explain(env, intent))
	}
	return out
}
