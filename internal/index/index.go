// Package index turns the enabled catalog entries into searchable items with
// a single trigger action each.
package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ashwch/sessionctl/internal/catalog"
	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
)

var ErrNoCommand = errors.New("no command configured")

// Launcher starts an effective command.
type Launcher interface {
	Launch(command string) error
}

type Action struct {
	Label       string
	Description string
	Trigger     func() error
}

type Item struct {
	ID          string
	Intent      catalog.Intent
	Text        string
	Subtitle    string
	Description string
	Icons       []string
	Command     string
	Actions     []Action
}

// Registry holds the current items. Call Rebuild after any settings change.
type Registry struct {
	catalog  *catalog.Catalog
	launcher Launcher
	logger   *log.Logger
	items    []Item
}

func NewRegistry(c *catalog.Catalog, launcher Launcher, logger *log.Logger) *Registry {
	r := &Registry{catalog: c, launcher: launcher, logger: logger}
	r.Rebuild()
	return r
}

func (r *Registry) Rebuild() {
	r.items = Build(r.catalog, r.launcher, r.logger)
}

func (r *Registry) Items() []Item {
	return append([]Item(nil), r.items...)
}

func (r *Registry) Search(query string) []Item {
	return Search(r.items, query)
}

// Build returns one item per enabled intent in catalog order. Text is the
// default title, Subtitle the effective one.
func Build(c *catalog.Catalog, launcher Launcher, logger *log.Logger) []Item {
	specs := c.Enabled()
	items := make([]Item, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		items = append(items, Item{
			ID:          spec.Name(),
			Intent:      spec.ID,
			Text:        spec.DefaultTitle,
			Subtitle:    c.EffectiveTitle(spec.ID),
			Description: spec.Description,
			Icons:       append([]string(nil), spec.Icons...),
			Command:     c.EffectiveCommand(spec.ID),
			Actions: []Action{{
				Label:       spec.DefaultTitle,
				Description: spec.Description,
				Trigger: func() error {
					// Overrides may have changed since the item was built.
					command := c.EffectiveCommand(spec.ID)
					if strings.TrimSpace(command) == "" {
						if logger != nil {
							logger.Warn("no command configured", "intent", spec.Name())
						}
						return fmt.Errorf("%s: %w", spec.Name(), ErrNoCommand)
					}
					return launcher.Launch(command)
				},
			}},
		})
	}
	return items
}

// Trigger runs the first action of item.
func (item Item) Trigger() error {
	if len(item.Actions) == 0 || item.Actions[0].Trigger == nil {
		return fmt.Errorf("%s: %w", item.ID, ErrNoCommand)
	}
	return item.Actions[0].Trigger()
}

// searchFields is a fuzzy.Source over every searchable string of every item.
type searchFields struct {
	values []string
	owners []int
}

func (s searchFields) String(i int) string { return s.values[i] }
func (s searchFields) Len() int            { return len(s.values) }

// Search ranks items by their best fuzzy match over title, effective title,
// id and description. An empty query returns all items in order.
func Search(items []Item, query string) []Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]Item(nil), items...)
	}

	var fields searchFields
	for idx, item := range items {
		for _, value := range []string{item.Text, item.Subtitle, item.ID, item.Description} {
			if strings.TrimSpace(value) == "" {
				continue
			}
			fields.values = append(fields.values, value)
			fields.owners = append(fields.owners, idx)
		}
	}

	best := map[int]int{}
	for _, match := range fuzzy.FindFrom(query, fields) {
		owner := fields.owners[match.Index]
		if score, seen := best[owner]; !seen || match.Score > score {
			best[owner] = match.Score
		}
	}

	ranked := make([]int, 0, len(best))
	for owner := range best {
		ranked = append(ranked, owner)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if best[ranked[i]] == best[ranked[j]] {
			return ranked[i] < ranked[j]
		}
		return best[ranked[i]] > best[ranked[j]]
	})

	out := make([]Item, 0, len(ranked))
	for _, idx := range ranked {
		out = append(out, items[idx])
	}
	return out
}
