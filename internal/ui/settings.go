package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashwch/sessionctl/internal/catalog"
	"github.com/charmbracelet/huh"
)

// settingsRow holds the form values of one intent. The form binds to its
// fields by pointer.
type settingsRow struct {
	spec    catalog.CommandSpec
	enabled bool
	title   string
	command string
}

func (r settingsRow) edit() catalog.Edit {
	return catalog.Edit{
		Intent:  r.spec.ID,
		Enabled: r.enabled,
		Title:   strings.TrimSpace(r.title),
		Command: strings.TrimSpace(r.command),
	}
}

func settingsRows(c *catalog.Catalog) []*settingsRow {
	specs := c.List()
	rows := make([]*settingsRow, 0, len(specs))
	for _, spec := range specs {
		current := c.EditFor(spec.ID)
		rows = append(rows, &settingsRow{
			spec:    spec,
			enabled: current.Enabled,
			title:   current.Title,
			command: current.Command,
		})
	}
	return rows
}

func settingsForm(rows []*settingsRow) *huh.Form {
	groups := make([]*huh.Group, 0, len(rows))
	for _, row := range rows {
		placeholder := row.spec.DefaultCommand
		if placeholder == "" {
			placeholder = "no default on this system"
		}
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title(row.spec.DefaultTitle).
				Description(row.spec.Description).
				Affirmative("Enabled").
				Negative("Disabled").
				Value(&row.enabled),
			huh.NewInput().
				Title("Title").
				Description("Leave empty to use the default title.").
				Placeholder(row.spec.DefaultTitle).
				Value(&row.title),
			huh.NewInput().
				Title("Command").
				Description("Leave empty to use the default command.").
				Placeholder(placeholder).
				Value(&row.command),
		))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeCharm())
}

// applySettings writes rows that differ from the stored state and returns
// how many intents changed.
func applySettings(c *catalog.Catalog, rows []*settingsRow) (int, error) {
	changed := 0
	for _, row := range rows {
		next := row.edit()
		if next == c.EditFor(row.spec.ID) {
			continue
		}
		if err := c.Apply(next); err != nil {
			return changed, fmt.Errorf("could not save settings for %s: %w", row.spec.Name(), err)
		}
		changed++
	}
	return changed, nil
}

// EditSettings shows the settings form for every intent in c and writes
// the result through the catalog. A cancelled form changes nothing.
func EditSettings(backend string, c *catalog.Catalog) (int, bool, error) {
	if !IsInteractiveBackend(backend) {
		return 0, false, nil
	}
	rows := settingsRows(c)
	if err := settingsForm(rows).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, true, nil
		}
		return 0, false, err
	}
	changed, err := applySettings(c, rows)
	return changed, true, err
}
