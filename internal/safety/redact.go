// Package safety scrubs secrets from command lines before they are logged.
package safety

import "regexp"

const redacted = "<redacted>"

type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

const secretWord = `(?:token|secret|password|passwd|passphrase|api[_-]?key|access[_-]?key)`

const shellValue = `([^\s"']+|"[^"]*"|'[^']*')`

var commandRedactionRules = []redactionRule{
	// PASSWORD=hunter2 systemctl reboot
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z0-9_]*` + secretWord + `[a-z0-9_]*)=` + shellValue),
		replacement: `$1=` + redacted,
	},
	// --password=hunter2, --token abc
	{
		pattern:     regexp.MustCompile(`(?i)(--[a-z0-9_-]*` + secretWord + `[a-z0-9_-]*)=` + shellValue),
		replacement: `$1=` + redacted,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(--[a-z0-9_-]*` + secretWord + `[a-z0-9_-]*)\s+` + shellValue),
		replacement: `$1 ` + redacted,
	},
	// echo hunter2 | sudo -S systemctl poweroff
	{
		pattern:     regexp.MustCompile(`\b(echo|printf)\s+` + shellValue + `(\s*\|\s*sudo\s+(?:-[a-zA-Z]*\s+)*-[a-zA-Z]*S)`),
		replacement: `$1 ` + redacted + `$3`,
	},
}

// RedactCommand replaces inline credentials in command with a placeholder.
// Commands without credentials are returned unchanged.
func RedactCommand(command string) string {
	out := command
	for _, rule := range commandRedactionRules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return out
}
