package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashwch/sessionctl/internal/appdirs"
	"github.com/ashwch/sessionctl/internal/busprobe"
	"github.com/ashwch/sessionctl/internal/config"
	"github.com/ashwch/sessionctl/internal/index"
	"github.com/ashwch/sessionctl/internal/platform"
)

type fakeProber struct {
	closed bool
}

func (p *fakeProber) Run(context.Context) []busprobe.Check {
	return []busprobe.Check{{Key: "logind.CanSuspend", Value: "yes", Status: "ok"}}
}

func (p *fakeProber) Close() error {
	p.closed = true
	return nil
}

func setupEnv(t *testing.T, desktop string) string {
	t.Helper()
	home := t.TempDir()
	configHome := filepath.Join(home, ".config")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv(platform.DesktopEnvVar, desktop)
	t.Setenv("SESSIONCTL_LOCALE", "en")

	previous := stdinIsInteractive
	stdinIsInteractive = func() bool { return false }
	t.Cleanup(func() {
		stdinIsInteractive = previous
	})

	path, err := appdirs.ConfigFilePath()
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	return path
}

func requireUnix(t *testing.T) {
	t.Helper()
	if platform.Current() != platform.Unix {
		t.Skip("desktop resolution applies to unix builds only")
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeItems(t *testing.T, out string) []itemView {
	t.Helper()
	var payload struct {
		Action  string     `json:"action"`
		Results []itemView `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("could not decode output %q: %v", out, err)
	}
	return payload.Results
}

func TestParseArgsStopsAtSubcommand(t *testing.T) {
	opts, rest, err := parseArgs([]string{"--json", "--ui", "huh", "--desktop", "KDE", "run", "lock"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if !opts.JSON || opts.UI != "huh" || opts.Desktop != "KDE" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if strings.Join(rest, " ") != "run lock" {
		t.Fatalf("unexpected rest: %#v", rest)
	}
}

func TestEffectiveConfigRejectsInvalidFlag(t *testing.T) {
	_, err := effectiveConfig(config.Default(), options{UI: "neon-ui"})
	if err == nil || !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for invalid --ui, got %v", err)
	}
	if !strings.Contains(err.Error(), "--ui") {
		t.Fatalf("expected flag name in error, got %v", err)
	}
}

func TestEffectiveConfigDoesNotTouchFileConfig(t *testing.T) {
	fileCfg := config.Default()
	cfg, err := effectiveConfig(fileCfg, options{Desktop: "KDE", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("effectiveConfig failed: %v", err)
	}
	if cfg.Desktop.Override != "KDE" || cfg.Log.Level != "debug" {
		t.Fatalf("expected overrides applied, got %+v", cfg)
	}
	if fileCfg.Desktop.Override != "" || fileCfg.Log.Level != "warn" {
		t.Fatalf("expected file config untouched, got %+v", fileCfg)
	}
}

func TestRunVersionAndUsage(t *testing.T) {
	setupEnv(t, "")
	if code, out, _ := runCLI(t, "", "--version"); code != 0 || strings.TrimSpace(out) != version {
		t.Fatalf("expected version output, got code=%d out=%q", code, out)
	}
	if code, _, errOut := runCLI(t, ""); code != 2 || !strings.Contains(errOut, "usage:") {
		t.Fatalf("expected usage exit 2, got code=%d stderr=%q", code, errOut)
	}
	if code, _, errOut := runCLI(t, "", "teleport"); code != 2 || !strings.Contains(errOut, "unknown subcommand") {
		t.Fatalf("expected unknown subcommand exit 2, got code=%d stderr=%q", code, errOut)
	}
}

func TestListUsesDesktopCommands(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "XFCE")

	code, out, errOut := runCLI(t, "", "--json", "list")
	if code != 0 {
		t.Fatalf("list failed: code=%d stderr=%q", code, errOut)
	}
	items := decodeItems(t, out)
	if len(items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(items))
	}
	if items[0].ID != "lock" || items[0].Command != "xflock4" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestDesktopFlagOverridesEnvironment(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "XFCE")

	code, out, errOut := runCLI(t, "", "--json", "--desktop", "LXQt", "list")
	if code != 0 {
		t.Fatalf("list failed: code=%d stderr=%q", code, errOut)
	}
	if items := decodeItems(t, out); items[0].Command != "lxqt-leave --lockscreen" {
		t.Fatalf("expected LXQt lock command, got %q", items[0].Command)
	}
}

func TestDisableClearsOverridesAndPersists(t *testing.T) {
	requireUnix(t)
	cfgPath := setupEnv(t, "XFCE")

	for _, args := range [][]string{
		{"title", "reboot", "Restart", "now"},
		{"command", "reboot", "systemctl", "reboot"},
		{"disable", "reboot"},
	} {
		if code, _, errOut := runCLI(t, "", args...); code != 0 {
			t.Fatalf("%v failed: code=%d stderr=%q", args, code, errOut)
		}
	}

	cfg, err := config.LoadOrCreateAt(cfgPath)
	if err != nil {
		t.Fatalf("could not reload config: %v", err)
	}
	if enabled, ok := cfg.Commands["reboot_enabled"].(bool); !ok || enabled {
		t.Fatalf("expected reboot_enabled=false on disk, got %#v", cfg.Commands["reboot_enabled"])
	}
	for _, key := range []string{"title_reboot", "command_reboot"} {
		if _, ok := cfg.Commands[key]; ok {
			t.Fatalf("expected %s cleared on disable", key)
		}
	}

	_, out, _ := runCLI(t, "", "--json", "list")
	for _, item := range decodeItems(t, out) {
		if item.ID == "reboot" {
			t.Fatalf("expected disabled reboot to be hidden")
		}
	}
}

func TestTitleOverrideShowsInList(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "XFCE")

	if code, _, errOut := runCLI(t, "", "title", "lock", "Away"); code != 0 {
		t.Fatalf("title failed: code=%d stderr=%q", code, errOut)
	}
	_, out, _ := runCLI(t, "", "--json", "list")
	items := decodeItems(t, out)
	if items[0].Title != "Away" || items[0].DefaultTitle != "Lock" {
		t.Fatalf("expected effective title Away over default Lock, got %+v", items[0])
	}

	if code, _, _ := runCLI(t, "", "title", "lock"); code != 0 {
		t.Fatalf("clearing title failed")
	}
	_, out, _ = runCLI(t, "", "--json", "list")
	if items := decodeItems(t, out); items[0].Title != "Lock" {
		t.Fatalf("expected cleared title to fall back to Lock, got %q", items[0].Title)
	}
}

func TestDryRunDoesNotPersist(t *testing.T) {
	cfgPath := setupEnv(t, "XFCE")

	if code, out, errOut := runCLI(t, "", "--dry-run", "disable", "lock"); code != 0 || !strings.Contains(out, "dry run") {
		t.Fatalf("dry-run disable failed: code=%d out=%q stderr=%q", code, out, errOut)
	}
	cfg, err := config.LoadOrCreateAt(cfgPath)
	if err != nil {
		t.Fatalf("could not reload config: %v", err)
	}
	if _, ok := cfg.Commands["lock_enabled"]; ok {
		t.Fatalf("expected dry run to leave the config file alone")
	}
}

func TestRunDryRunPrintsArgv(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "XFCE")

	code, out, errOut := runCLI(t, "", "--dry-run", "run", "lock")
	if code != 0 {
		t.Fatalf("run failed: code=%d stderr=%q", code, errOut)
	}
	if strings.TrimSpace(out) != "would run: /bin/sh -c xflock4" {
		t.Fatalf("unexpected dry-run output: %q", out)
	}

	code, out, _ = runCLI(t, "", "--dry-run", "run", "restrt")
	if code != 0 || !strings.Contains(out, "xfce4-session-logout --reboot") {
		t.Fatalf("expected fuzzy query to pick reboot, got code=%d out=%q", code, out)
	}
}

func TestRunUnknownIntentFails(t *testing.T) {
	setupEnv(t, "XFCE")
	if code, _, errOut := runCLI(t, "", "--dry-run", "run", "zzzz"); code != 1 || !strings.Contains(errOut, "no enabled action") {
		t.Fatalf("expected exit 1 for unmatched query, got code=%d stderr=%q", code, errOut)
	}
	if code, _, errOut := runCLI(t, "", "enable", "nap"); code != 2 || !strings.Contains(errOut, "unknown intent") {
		t.Fatalf("expected usage error for unknown intent, got code=%d stderr=%q", code, errOut)
	}
}

func TestDestructiveRunAsksAndCanBeDeclined(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "XFCE")
	stdinIsInteractive = func() bool { return true }

	if code, _, errOut := runCLI(t, "", "command", "reboot", "true"); code != 0 {
		t.Fatalf("command override failed: %q", errOut)
	}
	code, out, errOut := runCLI(t, "n\n", "--ui", "plain", "run", "reboot")
	if code != 0 {
		t.Fatalf("declined run failed: code=%d stderr=%q", code, errOut)
	}
	if !strings.Contains(errOut, "[y/N]") {
		t.Fatalf("expected plain confirmation prompt, got stderr=%q", errOut)
	}
	if !strings.Contains(out, "cancelled") {
		t.Fatalf("expected cancelled message, got %q", out)
	}
}

func TestConfigSetGet(t *testing.T) {
	cfgPath := setupEnv(t, "")

	if code, _, errOut := runCLI(t, "", "config", "set", "ui.backend", "tview"); code != 0 {
		t.Fatalf("config set failed: code=%d stderr=%q", code, errOut)
	}
	if code, out, _ := runCLI(t, "", "config", "get", "ui.backend"); code != 0 || strings.TrimSpace(out) != "tview" {
		t.Fatalf("expected tview, got code=%d out=%q", code, out)
	}
	// Flag overrides are not saved.
	if code, _, _ := runCLI(t, "", "--ui", "huh", "config", "set", "log.level", "debug"); code != 0 {
		t.Fatalf("config set with flag override failed")
	}
	content, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	if !strings.Contains(string(content), `backend = 'tview'`) && !strings.Contains(string(content), `backend = "tview"`) {
		t.Fatalf("expected saved backend tview, got:\n%s", content)
	}
	if code, _, _ := runCLI(t, "", "config", "set", "ui.backend", "neon"); code != 2 {
		t.Fatalf("expected invalid value to be a usage error")
	}
}

func TestResolveReportsOrigin(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "ubuntu:GNOME")

	code, out, errOut := runCLI(t, "", "--json", "resolve")
	if code != 0 {
		t.Fatalf("resolve failed: code=%d stderr=%q", code, errOut)
	}
	var payload struct {
		Message string           `json:"message"`
		Results []resolutionView `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Message != "ubuntu:GNOME" {
		t.Fatalf("expected desktop list in message, got %q", payload.Message)
	}
	sources := map[string]string{}
	for _, view := range payload.Results {
		sources[view.Intent] = view.Source
	}
	if sources["lock"] != "GNOME" {
		t.Fatalf("expected lock from GNOME, got %q", sources["lock"])
	}
	if sources["suspend"] != "generic" {
		t.Fatalf("expected suspend to fall through to generic, got %q", sources["suspend"])
	}
}

func TestDoctorUsesBusProbe(t *testing.T) {
	requireUnix(t)
	setupEnv(t, "MATE")
	prober := &fakeProber{}
	previous := newBusProber
	newBusProber = func() busProber { return prober }
	t.Cleanup(func() { newBusProber = previous })

	code, out, errOut := runCLI(t, "", "--json", "doctor")
	if code != 0 {
		t.Fatalf("doctor failed: code=%d stderr=%q", code, errOut)
	}
	var payload struct {
		Results []busprobe.Check `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	checks := map[string]busprobe.Check{}
	for _, c := range payload.Results {
		checks[c.Key] = c
	}
	if checks["logind.CanSuspend"].Status != "ok" {
		t.Fatalf("expected bus probe rows in doctor output")
	}
	if checks["desktops"].Value != "MATE" {
		t.Fatalf("expected desktops MATE, got %+v", checks["desktops"])
	}
	if !strings.HasPrefix(checks["intent.lock"].Value, "mate-screensaver-command --lock (MATE)") {
		t.Fatalf("unexpected lock check: %+v", checks["intent.lock"])
	}
	if _, ok := checks["intent.suspend.program"]; !ok {
		t.Fatalf("expected program check for wrapped suspend command")
	}
	if !prober.closed {
		t.Fatalf("expected bus prober to be closed")
	}
}

func TestInnerProgramLooksThroughShellWrapper(t *testing.T) {
	cases := map[string]string{
		`xflock4`: "xflock4",
		`sh -c "mate-screensaver-command --lock && systemctl suspend -i"`: "mate-screensaver-command",
		`sh -c`: "sh",
		`osascript -e 'tell app "System Events" to sleep'`: "osascript",
	}
	for command, want := range cases {
		if got := innerProgram(command); got != want {
			t.Fatalf("innerProgram(%q)=%q want=%q", command, got, want)
		}
	}
}

func TestPickPlain(t *testing.T) {
	items := []index.Item{
		{ID: "lock", Subtitle: "Lock", Command: "xflock4"},
		{ID: "reboot", Subtitle: "Reboot", Command: "xfce4-session-logout --reboot"},
	}
	var out bytes.Buffer

	item, ok, err := pickPlain(strings.NewReader("2\n"), &out, items)
	if err != nil || !ok || item.ID != "reboot" {
		t.Fatalf("expected reboot, got item=%+v ok=%v err=%v", item, ok, err)
	}
	if !strings.Contains(out.String(), "1) Lock  xflock4") {
		t.Fatalf("unexpected listing: %q", out.String())
	}
	if _, ok, err := pickPlain(strings.NewReader("\n"), &out, items); ok || err != nil {
		t.Fatalf("expected empty answer to cancel, got ok=%v err=%v", ok, err)
	}
	if _, _, err := pickPlain(strings.NewReader("9\n"), &out, items); !errors.Is(err, errUsage) {
		t.Fatalf("expected out-of-range answer to be a usage error, got %v", err)
	}
}
