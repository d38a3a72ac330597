package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ashwch/sessionctl/internal/catalog"
	"github.com/ashwch/sessionctl/internal/config"
	"github.com/ashwch/sessionctl/internal/i18n"
	"github.com/ashwch/sessionctl/internal/index"
	"github.com/ashwch/sessionctl/internal/launch"
	"github.com/ashwch/sessionctl/internal/platform"
	"github.com/ashwch/sessionctl/internal/resolver"
	"github.com/charmbracelet/log"
)

var version = "dev"

var stdinIsInteractive = isStdinInteractive

var errUsage = errors.New("usage")

const usageText = `usage: sessionctl [flags] <subcommand> [args]

subcommands:
  list                      enabled actions with their effective title and command
  search <query>            enabled actions ranked by fuzzy match
  run <intent|query>        run the best matching enabled action
  pick [query]              choose an action interactively and run it
  enable <intent>           enable an action
  disable <intent>          disable an action and clear its overrides
  title <intent> [text]     set the title override, or clear it when empty
  command <intent> [text]   set the command override, or clear it when empty
  settings                  edit every action in a form
  resolve                   show how each default command was chosen
  config show | get <key> | set <key> <value>
  doctor                    check the environment, commands and D-Bus services`

type options struct {
	JSON     bool
	DryRun   bool
	Yes      bool
	Version  bool
	UI       string
	Locale   string
	Desktop  string
	LogLevel string
}

type response struct {
	Action     string      `json:"action"`
	Message    string      `json:"message,omitempty"`
	Command    string      `json:"command,omitempty"`
	Results    interface{} `json:"results,omitempty"`
	DryRun     bool        `json:"dry_run,omitempty"`
	ConfigPath string      `json:"config_path,omitempty"`
	Changes    []string    `json:"changes,omitempty"`
}

type app struct {
	opts     options
	cfg      config.Config
	fileCfg  *config.Config
	cfgPath  string
	env      platform.Environment
	logger   *log.Logger
	catalog  *catalog.Catalog
	registry *index.Registry
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, rest, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "sessionctl: %v\n", err)
		return 2
	}
	if opts.Version {
		fmt.Fprintln(stdout, version)
		return 0
	}
	if len(rest) == 0 {
		fmt.Fprintln(stderr, usageText)
		return 2
	}

	fileCfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		fmt.Fprintf(stderr, "sessionctl: could not load config: %v\n", err)
		return 1
	}

	a, err := newApp(opts, &fileCfg, cfgPath, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "sessionctl: %v\n", err)
		return 2
	}
	if err := a.dispatch(rest); err != nil {
		fmt.Fprintf(stderr, "sessionctl: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func parseArgs(args []string, output io.Writer) (options, []string, error) {
	fs := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, usageText)
		fmt.Fprintln(output, "\nflags:")
		fs.PrintDefaults()
	}

	var opts options
	fs.BoolVar(&opts.JSON, "json", false, "output JSON")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "print commands instead of running them and keep settings in memory")
	fs.BoolVar(&opts.Yes, "yes", false, "skip confirmation of logout, reboot and poweroff")
	fs.BoolVar(&opts.Version, "version", false, "print version")
	fs.StringVar(&opts.UI, "ui", "", "override ui backend: auto|bubbletea|huh|tview|plain")
	fs.StringVar(&opts.Locale, "locale", "", "override locale: auto|en|de|de-DE")
	fs.StringVar(&opts.Desktop, "desktop", "", "override "+platform.DesktopEnvVar+", e.g. KDE or ubuntu:GNOME")
	fs.StringVar(&opts.LogLevel, "log-level", "", "override log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	return opts, fs.Args(), nil
}

// effectiveConfig applies flag overrides to a copy of the file config. The
// copy is never saved.
func effectiveConfig(fileCfg config.Config, opts options) (config.Config, error) {
	cfg := fileCfg
	overrides := []struct {
		key   string
		value string
	}{
		{key: "ui.backend", value: opts.UI},
		{key: "locale", value: opts.Locale},
		{key: "desktop.override", value: opts.Desktop},
		{key: "log.level", value: opts.LogLevel},
	}
	for _, override := range overrides {
		if strings.TrimSpace(override.value) == "" {
			continue
		}
		if err := cfg.Set(override.key, override.value); err != nil {
			return config.Config{}, fmt.Errorf("%w: invalid --%s: %v", errUsage, flagName(override.key), err)
		}
	}
	return cfg, nil
}

func flagName(key string) string {
	switch key {
	case "ui.backend":
		return "ui"
	case "desktop.override":
		return "desktop"
	case "log.level":
		return "log-level"
	default:
		return key
	}
}

func newLogger(w io.Writer, level string) *log.Logger {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "sessionctl",
		Level:  parsed,
	})
}

func newApp(opts options, fileCfg *config.Config, cfgPath string, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg, err := effectiveConfig(*fileCfg, opts)
	if err != nil {
		return nil, err
	}
	a := &app{
		opts:    opts,
		cfg:     cfg,
		fileCfg: fileCfg,
		cfgPath: cfgPath,
		env:     platform.Detect().WithDesktops(cfg.Desktop.Override),
		logger:  newLogger(stderr, cfg.Log.Level),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}

	locale := cfg.Locale
	if locale == "auto" {
		locale = ""
	}
	var store catalog.Store
	if opts.DryRun {
		store = config.NewMemoryStore(fileCfg.Commands)
	} else {
		store = config.NewFileStore(cfgPath, fileCfg)
	}
	a.catalog = catalog.New(store, catalog.Options{
		Platform: a.env.Platform,
		Defaults: resolver.NewDefaults(a.env, catalog.Intents(a.env.Platform)),
		Labels:   i18n.LoadCatalog(locale),
	})

	var launchOut io.Writer = stdout
	if opts.JSON {
		launchOut = nil
	}
	a.registry = index.NewRegistry(a.catalog, launch.NewLauncher(a.logger, opts.DryRun, launchOut), a.logger)

	a.logger.Debug("environment",
		"platform", a.env.Platform,
		"desktops", a.env.DesktopString(),
		"config", cfgPath,
		"dry_run", opts.DryRun,
	)
	return a, nil
}

func (a *app) dispatch(args []string) error {
	name, rest := args[0], args[1:]
	switch name {
	case "list":
		return a.handleList()
	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("%w: search <query>", errUsage)
		}
		return a.handleSearch(strings.Join(rest, " "))
	case "run":
		if len(rest) == 0 {
			return fmt.Errorf("%w: run <intent|query>", errUsage)
		}
		return a.handleRun(strings.Join(rest, " "))
	case "pick":
		return a.handlePick(strings.Join(rest, " "))
	case "enable", "disable":
		if len(rest) != 1 {
			return fmt.Errorf("%w: %s <intent>", errUsage, name)
		}
		return a.handleEnable(rest[0], name == "enable")
	case "title":
		if len(rest) == 0 {
			return fmt.Errorf("%w: title <intent> [text]", errUsage)
		}
		return a.handleTitle(rest[0], strings.Join(rest[1:], " "))
	case "command":
		if len(rest) == 0 {
			return fmt.Errorf("%w: command <intent> [text]", errUsage)
		}
		return a.handleCommand(rest[0], strings.Join(rest[1:], " "))
	case "settings":
		return a.handleSettings()
	case "resolve":
		return a.handleResolve()
	case "config":
		return a.handleConfig(rest)
	case "doctor":
		return a.handleDoctor()
	case "version":
		fmt.Fprintln(a.stdout, version)
		return nil
	default:
		return fmt.Errorf("%w: unknown subcommand %q", errUsage, name)
	}
}

func (a *app) printResponse(payload response) {
	printResponse(a.stdout, payload, a.opts.JSON)
}

func printResponse(w io.Writer, payload response, asJSON bool) {
	if asJSON {
		encoded, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintln(w, string(encoded))
		return
	}
	if payload.Message != "" {
		fmt.Fprintln(w, payload.Message)
	}
	if payload.Command != "" {
		fmt.Fprintf(w, "command: %s\n", payload.Command)
	}
	for _, change := range payload.Changes {
		fmt.Fprintf(w, "- %s\n", change)
	}
	if payload.Results != nil {
		encoded, _ := json.MarshalIndent(payload.Results, "", "  ")
		fmt.Fprintln(w, string(encoded))
	}
	if payload.ConfigPath != "" {
		fmt.Fprintf(w, "config: %s\n", payload.ConfigPath)
	}
}

func isStdinInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
