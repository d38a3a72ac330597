package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/ashwch/sessionctl/internal/busprobe"
	"github.com/ashwch/sessionctl/internal/catalog"
	"github.com/ashwch/sessionctl/internal/launch"
	"github.com/ashwch/sessionctl/internal/platform"
	"github.com/ashwch/sessionctl/internal/resolver"
	"github.com/ashwch/sessionctl/internal/ui"
)

const busProbeTimeout = 3 * time.Second

type check = busprobe.Check

// newBusProber is replaced in tests so doctor never needs a live bus.
var newBusProber = func() busProber { return busprobe.New() }

type busProber interface {
	Run(ctx context.Context) []busprobe.Check
	Close() error
}

func (a *app) handleDoctor() error {
	checks := a.environmentChecks()
	checks = append(checks, a.commandChecks()...)
	if a.env.Platform == platform.Unix {
		checks = append(checks, a.busChecks()...)
	}

	if a.opts.JSON {
		a.printResponse(response{Action: "doctor", Results: checks, ConfigPath: a.cfgPath})
		return nil
	}
	rows := make([][]string, 0, len(checks))
	for _, c := range checks {
		rows = append(rows, []string{c.Key, c.Status, c.Value})
	}
	fmt.Fprintln(a.stdout, "doctor checks:")
	fmt.Fprintln(a.stdout, ui.RenderTable([]string{"CHECK", "STATUS", "VALUE"}, rows))
	return nil
}

func (a *app) environmentChecks() []check {
	desktops := check{Key: "desktops", Value: a.env.DesktopString(), Status: "ok"}
	if desktops.Value == "" {
		desktops.Value = platform.DesktopEnvVar + " is not set"
		desktops.Status = "missing"
		if a.env.Platform != platform.Unix {
			desktops.Status = "ok"
		}
	}
	return []check{
		{Key: "os", Value: goruntime.GOOS + "/" + a.env.Platform.String(), Status: "ok"},
		desktops,
		{Key: "config_path", Value: a.cfgPath, Status: statusFile(a.cfgPath)},
		{Key: "ui_backend", Value: a.cfg.UI.Backend, Status: "ok"},
	}
}

// commandChecks reports, per intent, the effective command with its origin,
// whether the program it starts is on PATH and whether it parses as shell.
func (a *app) commandChecks() []check {
	resolutions := resolver.ExplainAll(a.env, catalog.Intents(a.env.Platform))
	checks := make([]check, 0, len(resolutions)*3)
	for _, res := range resolutions {
		key := "intent." + res.Intent.String()
		if !a.catalog.IsEnabled(res.Intent) {
			checks = append(checks, check{Key: key, Value: "disabled", Status: "skipped"})
			continue
		}
		command := a.catalog.EffectiveCommand(res.Intent)
		origin := res.Source
		if a.catalog.CommandOverride(res.Intent) != "" {
			origin = "override"
		}
		if strings.TrimSpace(command) == "" {
			checks = append(checks, check{Key: key, Value: "no command for this desktop", Status: "missing"})
			continue
		}
		checks = append(checks, check{Key: key, Value: fmt.Sprintf("%s (%s)", command, origin), Status: "ok"})

		if err := launch.Check(command); err != nil {
			checks = append(checks, check{Key: key + ".syntax", Value: err.Error(), Status: "error"})
			continue
		}
		if program := innerProgram(command); program != "" {
			checks = append(checks, check{Key: key + ".program", Value: pathOrMissing(program), Status: statusBinary(program)})
		}
	}
	return checks
}

// innerProgram looks through one level of `sh -c "..."` so that wrapped
// desktop commands report the program they actually start.
func innerProgram(command string) string {
	program := launch.Program(command)
	if program != "sh" && program != launch.ShellPath {
		return program
	}
	fields, err := launch.Fields(command)
	if err != nil || len(fields) < 3 || fields[1] != "-c" {
		return program
	}
	if inner := launch.Program(fields[2]); inner != "" {
		return inner
	}
	return program
}

func (a *app) busChecks() []check {
	prober := newBusProber()
	defer func() {
		if err := prober.Close(); err != nil {
			a.logger.Debug("could not close bus connection", "error", err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), busProbeTimeout)
	defer cancel()
	return prober.Run(ctx)
}

func statusFile(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "missing"
	}
	return "ok"
}

func statusBinary(name string) string {
	if _, err := exec.LookPath(name); err != nil {
		return "missing"
	}
	return "ok"
}

func pathOrMissing(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return name
	}
	return path
}
