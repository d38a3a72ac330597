package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ashwch/sessionctl/internal/catalog"
	"github.com/ashwch/sessionctl/internal/config"
	"github.com/ashwch/sessionctl/internal/index"
	"github.com/ashwch/sessionctl/internal/launch"
	"github.com/ashwch/sessionctl/internal/resolver"
	"github.com/ashwch/sessionctl/internal/ui"
)

type itemView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DefaultTitle string   `json:"default_title"`
	Description  string   `json:"description"`
	Command      string   `json:"command"`
	Icons        []string `json:"icons,omitempty"`
}

func viewItems(items []index.Item) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView{
			ID:           item.ID,
			Title:        item.Subtitle,
			DefaultTitle: item.Text,
			Description:  item.Description,
			Command:      item.Command,
			Icons:        item.Icons,
		})
	}
	return views
}

func (a *app) printItems(action string, items []index.Item) {
	if a.opts.JSON {
		a.printResponse(response{Action: action, Results: viewItems(items)})
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "no enabled actions")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		command := item.Command
		if strings.TrimSpace(command) == "" {
			command = "(none)"
		}
		rows = append(rows, []string{item.ID, item.Subtitle, command})
	}
	fmt.Fprintln(a.stdout, ui.RenderTable([]string{"INTENT", "TITLE", "COMMAND"}, rows))
}

func (a *app) handleList() error {
	a.printItems("list", a.registry.Items())
	return nil
}

func (a *app) handleSearch(query string) error {
	a.printItems("search", a.registry.Search(query))
	return nil
}

// findItem matches an exact intent name first, then the best fuzzy match.
func (a *app) findItem(query string) (index.Item, bool) {
	items := a.registry.Items()
	if intent, ok := catalog.ParseIntent(query); ok {
		for _, item := range items {
			if item.Intent == intent {
				return item, true
			}
		}
		return index.Item{}, false
	}
	ranked := index.Search(items, query)
	if len(ranked) == 0 {
		return index.Item{}, false
	}
	return ranked[0], true
}

func (a *app) handleRun(query string) error {
	item, ok := a.findItem(query)
	if !ok {
		return fmt.Errorf("no enabled action matches %q", query)
	}
	return a.trigger(item)
}

func (a *app) handlePick(query string) error {
	items := a.registry.Search(query)
	if len(items) == 0 {
		return fmt.Errorf("no enabled action matches %q", query)
	}
	if !stdinIsInteractive() {
		return fmt.Errorf("%w: pick needs an interactive terminal; use run <intent> instead", errUsage)
	}

	item, ok, used, err := ui.PickItem(a.cfg.UI.Backend, items)
	if err != nil {
		a.logger.Warn("picker failed, falling back to plain prompt", "backend", a.cfg.UI.Backend, "error", err)
	}
	if !used {
		item, ok, err = pickPlain(a.stdin, a.stderr, items)
		if err != nil {
			return err
		}
	}
	if !ok {
		a.printResponse(response{Action: "pick", Message: "cancelled"})
		return nil
	}
	return a.trigger(item)
}

func pickPlain(in io.Reader, out io.Writer, items []index.Item) (index.Item, bool, error) {
	for idx, item := range items {
		fmt.Fprintf(out, "%d) %s  %s\n", idx+1, item.Subtitle, item.Command)
	}
	fmt.Fprintf(out, "select [1-%d]: ", len(items))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return index.Item{}, false, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return index.Item{}, false, nil
	}
	choice, err := strconv.Atoi(line)
	if err != nil || choice < 1 || choice > len(items) {
		return index.Item{}, false, fmt.Errorf("%w: invalid selection %q", errUsage, line)
	}
	return items[choice-1], true, nil
}

func isDestructive(intent catalog.Intent) bool {
	switch intent {
	case catalog.Logout, catalog.Reboot, catalog.Poweroff:
		return true
	default:
		return false
	}
}

// confirm asks before ending the session or powering off. Dry runs start
// nothing and are never asked about.
func (a *app) confirm(item index.Item) (bool, error) {
	if a.opts.Yes || a.opts.DryRun || !a.cfg.UI.ConfirmDestructive || !isDestructive(item.Intent) {
		return true, nil
	}
	if !stdinIsInteractive() {
		return true, nil
	}
	approved, used, err := ui.ConfirmAction(a.cfg.UI.Backend, item.Subtitle, item.Command)
	if err != nil {
		a.logger.Warn("confirm prompt failed, falling back to plain prompt", "backend", a.cfg.UI.Backend, "error", err)
	}
	if used {
		return approved, nil
	}
	return ui.ConfirmPlain(a.stdin, a.stderr, item.Subtitle, item.Command)
}

func (a *app) trigger(item index.Item) error {
	approved, err := a.confirm(item)
	if err != nil {
		return err
	}
	if !approved {
		a.printResponse(response{Action: "run", Message: "cancelled", Command: item.Command})
		return nil
	}
	if err := item.Trigger(); err != nil {
		return fmt.Errorf("could not run %s: %w", item.ID, err)
	}
	if a.opts.JSON {
		a.printResponse(response{Action: "run", Message: item.Subtitle, Command: item.Command, DryRun: a.opts.DryRun})
	}
	return nil
}

func (a *app) lookupSpec(name string) (catalog.CommandSpec, error) {
	intent, ok := catalog.ParseIntent(name)
	if !ok {
		names := make([]string, 0, a.catalog.Len())
		for _, spec := range a.catalog.List() {
			names = append(names, spec.Name())
		}
		return catalog.CommandSpec{}, fmt.Errorf("%w: %w %q (one of: %s)", errUsage, catalog.ErrUnknownIntent, name, strings.Join(names, ", "))
	}
	spec, ok := a.catalog.Lookup(intent)
	if !ok {
		return catalog.CommandSpec{}, fmt.Errorf("%s is not available on %s", intent, a.env.Platform)
	}
	return spec, nil
}

func (a *app) savedNote() string {
	if a.opts.DryRun {
		return " (dry run, not saved)"
	}
	return ""
}

func (a *app) handleEnable(name string, enabled bool) error {
	spec, err := a.lookupSpec(name)
	if err != nil {
		return err
	}
	if err := a.catalog.SetEnabled(spec.ID, enabled); err != nil {
		return fmt.Errorf("could not save %s: %w", spec.EnabledKey, err)
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	a.printResponse(response{
		Action:     state,
		Message:    fmt.Sprintf("%s %s%s", spec.Name(), state, a.savedNote()),
		ConfigPath: a.cfgPath,
	})
	return nil
}

func (a *app) handleTitle(name string, title string) error {
	spec, err := a.lookupSpec(name)
	if err != nil {
		return err
	}
	if err := a.catalog.SetTitle(spec.ID, title); err != nil {
		return fmt.Errorf("could not save %s: %w", spec.TitleKey, err)
	}
	a.printResponse(response{
		Action:     "title",
		Message:    fmt.Sprintf("%s title: %s%s", spec.Name(), a.catalog.EffectiveTitle(spec.ID), a.savedNote()),
		ConfigPath: a.cfgPath,
	})
	return nil
}

func (a *app) handleCommand(name string, command string) error {
	spec, err := a.lookupSpec(name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(command) != "" {
		if err := launch.Check(command); err != nil {
			a.logger.Warn("command override does not parse as shell", "intent", spec.Name(), "error", err)
		}
	}
	if err := a.catalog.SetCommand(spec.ID, command); err != nil {
		return fmt.Errorf("could not save %s: %w", spec.CommandKey, err)
	}
	a.printResponse(response{
		Action:     "command",
		Message:    fmt.Sprintf("%s command%s", spec.Name(), a.savedNote()),
		Command:    a.catalog.EffectiveCommand(spec.ID),
		ConfigPath: a.cfgPath,
	})
	return nil
}

func (a *app) handleSettings() error {
	if !stdinIsInteractive() {
		return fmt.Errorf("%w: settings needs an interactive terminal", errUsage)
	}
	changed, used, err := ui.EditSettings(a.cfg.UI.Backend, a.catalog)
	if err != nil {
		return fmt.Errorf("could not edit settings: %w", err)
	}
	if !used {
		return fmt.Errorf("%w: settings needs an interactive ui backend, not %q", errUsage, a.cfg.UI.Backend)
	}
	a.printResponse(response{
		Action:     "settings",
		Message:    fmt.Sprintf("%d action(s) changed%s", changed, a.savedNote()),
		ConfigPath: a.cfgPath,
	})
	return nil
}

type resolutionView struct {
	Intent   string `json:"intent"`
	Source   string `json:"source"`
	Default  string `json:"default"`
	Override string `json:"override,omitempty"`
	Enabled  bool   `json:"enabled"`
}

func (a *app) handleResolve() error {
	resolutions := resolver.ExplainAll(a.env, catalog.Intents(a.env.Platform))
	views := make([]resolutionView, 0, len(resolutions))
	for _, res := range resolutions {
		views = append(views, resolutionView{
			Intent:   res.Intent.String(),
			Source:   res.Source,
			Default:  res.Command,
			Override: a.catalog.CommandOverride(res.Intent),
			Enabled:  a.catalog.IsEnabled(res.Intent),
		})
	}
	if a.opts.JSON {
		a.printResponse(response{Action: "resolve", Message: a.env.DesktopString(), Results: views})
		return nil
	}

	fmt.Fprintf(a.stdout, "platform: %s\ndesktops: %s\n", a.env.Platform, orNone(a.env.DesktopString()))
	rows := make([][]string, 0, len(views))
	for _, view := range views {
		source := orNone(view.Source)
		command := orNone(view.Default)
		if view.Override != "" {
			source = "override"
			command = view.Override
		}
		if !view.Enabled {
			source += " (disabled)"
		}
		rows = append(rows, []string{view.Intent, source, command})
	}
	fmt.Fprintln(a.stdout, ui.RenderTable([]string{"INTENT", "ORIGIN", "COMMAND"}, rows))
	return nil
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}

func (a *app) handleConfig(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: config show | get <key> | set <key> <value>", errUsage)
	}
	switch args[0] {
	case "show":
		a.printResponse(response{
			Action:     "config_show",
			Message:    "effective settings",
			Results:    a.cfg,
			ConfigPath: a.cfgPath,
		})
		return nil
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("%w: config get <key> (one of: %s)", errUsage, strings.Join(config.Keys(), ", "))
		}
		value, err := a.cfg.Get(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if a.opts.JSON {
			a.printResponse(response{Action: "config_get", Message: value, ConfigPath: a.cfgPath})
			return nil
		}
		fmt.Fprintln(a.stdout, value)
		return nil
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("%w: config set <key> <value> (one of: %s)", errUsage, strings.Join(config.Keys(), ", "))
		}
		key, value := args[1], strings.Join(args[2:], " ")
		if err := a.fileCfg.Set(key, value); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if !a.opts.DryRun {
			if err := config.Save(a.cfgPath, *a.fileCfg); err != nil {
				return fmt.Errorf("could not save config: %w", err)
			}
		}
		saved, _ := a.fileCfg.Get(key)
		a.printResponse(response{
			Action:     "config_set",
			Message:    "saved settings" + a.savedNote(),
			ConfigPath: a.cfgPath,
			Changes:    []string{fmt.Sprintf("%s=%s", key, saved)},
		})
		return nil
	default:
		return fmt.Errorf("%w: unknown config action %q", errUsage, args[0])
	}
}
