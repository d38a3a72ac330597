// Package catalog holds the fixed set of session-control intents, their
// static metadata and the per-intent enable, title and command state kept in
// an external Store.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashwch/sessionctl/internal/platform"
)

type Intent int

const (
	Lock Intent = iota
	Logout
	Suspend
	Hibernate
	Reboot
	Poweroff
)

const intentCount = int(Poweroff) + 1

var intentNames = [intentCount]string{"lock", "logout", "suspend", "hibernate", "reboot", "poweroff"}

var ErrUnknownIntent = errors.New("unknown intent")

func (i Intent) String() string {
	if i < 0 || int(i) >= intentCount {
		return fmt.Sprintf("intent(%d)", int(i))
	}
	return intentNames[i]
}

func ParseIntent(name string) (Intent, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for idx, candidate := range intentNames {
		if candidate == name {
			return Intent(idx), true
		}
	}
	return 0, false
}

// Intents returns the intents supported on p in display order.
func Intents(p platform.Platform) []Intent {
	out := make([]Intent, 0, intentCount)
	for idx := 0; idx < intentCount; idx++ {
		intent := Intent(idx)
		if intent == Hibernate && p == platform.Apple {
			continue
		}
		out = append(out, intent)
	}
	return out
}

// Store is the key-value configuration the catalog reads overrides from.
// Absent keys yield the fallback.
type Store interface {
	Bool(key string, fallback bool) bool
	String(key string, fallback string) string
	Set(key string, value any) error
	Remove(key string) error
}

// Labels localizes the default title and description of an intent. Empty
// results keep the built-in English text.
type Labels interface {
	IntentLabel(name string) (title string, description string)
}

// Defaults maps each intent to its resolved default command.
type Defaults map[Intent]string

type CommandSpec struct {
	ID             Intent
	EnabledKey     string
	TitleKey       string
	CommandKey     string
	Icons          []string
	DefaultTitle   string
	Description    string
	DefaultCommand string
}

func (s CommandSpec) Name() string {
	return s.ID.String()
}

type Options struct {
	Platform platform.Platform
	Defaults Defaults
	Labels   Labels
}

type Catalog struct {
	specs    []CommandSpec
	position map[Intent]int
	store    Store
}

type staticSpec struct {
	id          Intent
	icon        string
	title       string
	description string
}

var staticSpecs = [intentCount]staticSpec{
	{id: Lock, icon: "system-lock-screen", title: "Lock", description: "Lock the session"},
	{id: Logout, icon: "system-log-out", title: "Logout", description: "Quit the session"},
	{id: Suspend, icon: "system-suspend", title: "Suspend", description: "Suspend to memory"},
	{id: Hibernate, icon: "system-suspend-hibernate", title: "Hibernate", description: "Suspend to disk"},
	{id: Reboot, icon: "system-reboot", title: "Reboot", description: "Restart the machine"},
	{id: Poweroff, icon: "system-shutdown", title: "Poweroff", description: "Shut down the machine"},
}

// New builds the catalog for opts.Platform. It panics if the static table is
// inconsistent, since that can only be a programming error.
func New(store Store, opts Options) *Catalog {
	intents := Intents(opts.Platform)
	c := &Catalog{
		specs:    make([]CommandSpec, 0, len(intents)),
		position: make(map[Intent]int, len(intents)),
		store:    store,
	}
	for _, intent := range intents {
		static := staticSpecs[intent]
		name := intent.String()
		spec := CommandSpec{
			ID:             intent,
			EnabledKey:     name + "_enabled",
			TitleKey:       "title_" + name,
			CommandKey:     "command_" + name,
			Icons:          []string{"xdg:" + static.icon, ":" + name},
			DefaultTitle:   static.title,
			Description:    static.description,
			DefaultCommand: opts.Defaults[intent],
		}
		if opts.Labels != nil {
			title, description := opts.Labels.IntentLabel(name)
			if strings.TrimSpace(title) != "" {
				spec.DefaultTitle = strings.TrimSpace(title)
			}
			if strings.TrimSpace(description) != "" {
				spec.Description = strings.TrimSpace(description)
			}
		}
		c.position[intent] = len(c.specs)
		c.specs = append(c.specs, spec)
	}
	if err := validate(c.specs); err != nil {
		panic(err)
	}
	return c
}

func validate(specs []CommandSpec) error {
	for idx, static := range staticSpecs {
		if int(static.id) != idx {
			return fmt.Errorf("catalog: static spec %d describes %s", idx, static.id)
		}
	}
	seenIntent := map[Intent]struct{}{}
	seenKey := map[string]Intent{}
	for _, spec := range specs {
		if _, ok := seenIntent[spec.ID]; ok {
			return fmt.Errorf("catalog: duplicate spec for %s", spec.ID)
		}
		seenIntent[spec.ID] = struct{}{}
		for _, key := range []string{spec.EnabledKey, spec.TitleKey, spec.CommandKey} {
			if owner, ok := seenKey[key]; ok {
				return fmt.Errorf("catalog: key %q used by %s and %s", key, owner, spec.ID)
			}
			seenKey[key] = spec.ID
		}
	}
	return nil
}

// List returns every spec in display order.
func (c *Catalog) List() []CommandSpec {
	return append([]CommandSpec(nil), c.specs...)
}

func (c *Catalog) Len() int {
	return len(c.specs)
}

func (c *Catalog) Lookup(intent Intent) (CommandSpec, bool) {
	idx, ok := c.position[intent]
	if !ok {
		return CommandSpec{}, false
	}
	return c.specs[idx], true
}

// Enabled returns the enabled specs in display order.
func (c *Catalog) Enabled() []CommandSpec {
	out := make([]CommandSpec, 0, len(c.specs))
	for _, spec := range c.specs {
		if c.store.Bool(spec.EnabledKey, true) {
			out = append(out, spec)
		}
	}
	return out
}

func (c *Catalog) IsEnabled(intent Intent) bool {
	spec, ok := c.Lookup(intent)
	if !ok {
		return false
	}
	return c.store.Bool(spec.EnabledKey, true)
}

func (c *Catalog) EffectiveTitle(intent Intent) string {
	spec, ok := c.Lookup(intent)
	if !ok {
		return ""
	}
	if title := c.store.String(spec.TitleKey, ""); title != "" {
		return title
	}
	return spec.DefaultTitle
}

func (c *Catalog) EffectiveCommand(intent Intent) string {
	spec, ok := c.Lookup(intent)
	if !ok {
		return ""
	}
	if command := c.store.String(spec.CommandKey, ""); command != "" {
		return command
	}
	return spec.DefaultCommand
}

// TitleOverride and CommandOverride return the stored override, empty when unset.
func (c *Catalog) TitleOverride(intent Intent) string {
	spec, ok := c.Lookup(intent)
	if !ok {
		return ""
	}
	return c.store.String(spec.TitleKey, "")
}

func (c *Catalog) CommandOverride(intent Intent) string {
	spec, ok := c.Lookup(intent)
	if !ok {
		return ""
	}
	return c.store.String(spec.CommandKey, "")
}

// SetEnabled stores the enabled flag. Disabling also drops the title and
// command overrides so that re-enabling starts from the defaults.
func (c *Catalog) SetEnabled(intent Intent, enabled bool) error {
	spec, ok := c.Lookup(intent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	if err := c.store.Set(spec.EnabledKey, enabled); err != nil {
		return fmt.Errorf("could not store %s: %w", spec.EnabledKey, err)
	}
	if enabled {
		return nil
	}
	if err := c.store.Remove(spec.TitleKey); err != nil {
		return fmt.Errorf("could not clear %s: %w", spec.TitleKey, err)
	}
	if err := c.store.Remove(spec.CommandKey); err != nil {
		return fmt.Errorf("could not clear %s: %w", spec.CommandKey, err)
	}
	return nil
}

// SetTitle stores a title override; an empty title removes it.
func (c *Catalog) SetTitle(intent Intent, title string) error {
	spec, ok := c.Lookup(intent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	return c.setOrRemove(spec.TitleKey, title)
}

// SetCommand stores a command override; an empty command removes it.
func (c *Catalog) SetCommand(intent Intent, command string) error {
	spec, ok := c.Lookup(intent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	return c.setOrRemove(spec.CommandKey, command)
}

func (c *Catalog) setOrRemove(key string, value string) error {
	if strings.TrimSpace(value) == "" {
		if err := c.store.Remove(key); err != nil {
			return fmt.Errorf("could not clear %s: %w", key, err)
		}
		return nil
	}
	if err := c.store.Set(key, value); err != nil {
		return fmt.Errorf("could not store %s: %w", key, err)
	}
	return nil
}
