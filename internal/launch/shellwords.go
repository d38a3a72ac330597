package launch

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// Check parses command as POSIX shell. It is a diagnostic: commands are
// never refused because of it, the shell reports its own errors at run time.
func Check(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	if _, err := parse(command); err != nil {
		return fmt.Errorf("shell syntax error: %w", err)
	}
	return nil
}

// Program returns the first word of the first simple command, or "" when
// command does not parse or starts with something other than a literal.
func Program(command string) string {
	file, err := parse(command)
	if err != nil {
		return ""
	}
	program := ""
	syntax.Walk(file, func(node syntax.Node) bool {
		if program != "" {
			return false
		}
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		program = call.Args[0].Lit()
		return false
	})
	return program
}

// Fields splits a simple command into words using shell quoting rules and
// the current environment for parameter expansion.
func Fields(command string) ([]string, error) {
	fields, err := shell.Fields(command, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("could not split command: %w", err)
	}
	return fields, nil
}

func parse(command string) (*syntax.File, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	return parser.Parse(strings.NewReader(command), "command")
}
