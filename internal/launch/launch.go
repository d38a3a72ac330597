// Package launch starts session commands as detached shell processes.
package launch

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/ashwch/sessionctl/internal/safety"
	"github.com/charmbracelet/log"
)

// ShellPath interprets every command, so user overrides may use quoting,
// pipes and && chains.
const ShellPath = "/bin/sh"

var ErrEmptyCommand = errors.New("command is empty")

// Argv is the process argument vector used for command.
func Argv(command string) []string {
	return []string{ShellPath, "-c", command}
}

// Detached starts command in its own session and returns without waiting.
// The child's stdio is the null device and the process is released, so the
// caller never learns how it exits.
func Detached(command string) (int, error) {
	if strings.TrimSpace(command) == "" {
		return 0, ErrEmptyCommand
	}
	argv := Argv(command)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("could not start %s: %w", argv[0], err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("could not release process %d: %w", pid, err)
	}
	return pid, nil
}

// Launcher runs effective commands on behalf of index items.
type Launcher struct {
	Logger *log.Logger
	// DryRun prints the argv to Out instead of starting a process.
	DryRun bool
	Out    io.Writer

	start func(string) (int, error)
}

func NewLauncher(logger *log.Logger, dryRun bool, out io.Writer) *Launcher {
	return &Launcher{Logger: logger, DryRun: dryRun, Out: out, start: Detached}
}

// Launch starts command. Failures are logged and returned; nothing retries.
func (l *Launcher) Launch(command string) error {
	if l.DryRun {
		if l.Out != nil {
			fmt.Fprintf(l.Out, "would run: %s\n", quoteArgv(Argv(command)))
		}
		return nil
	}
	start := l.start
	if start == nil {
		start = Detached
	}
	pid, err := start(command)
	if err != nil {
		if l.Logger != nil {
			l.Logger.Error("launch failed", "command", safety.RedactCommand(command), "error", err)
		}
		return err
	}
	if l.Logger != nil {
		l.Logger.Debug("launched", "command", safety.RedactCommand(command), "pid", pid)
	}
	return nil
}

func quoteArgv(argv []string) string {
	quoted := make([]string, 0, len(argv))
	for _, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\$`&|;<>()*?[]#~") {
			quoted = append(quoted, "'"+strings.ReplaceAll(arg, "'", `'\''`)+"'")
			continue
		}
		quoted = append(quoted, arg)
	}
	return strings.Join(quoted, " ")
}
