package catalog

// Edit is one row of the settings form.
type Edit struct {
	Intent  Intent
	Enabled bool
	Title   string
	Command string
}

// EditFor returns the current state of intent as an Edit, with overrides
// rather than effective values so that empty fields mean "use default".
func (c *Catalog) EditFor(intent Intent) Edit {
	return Edit{
		Intent:  intent,
		Enabled: c.IsEnabled(intent),
		Title:   c.TitleOverride(intent),
		Command: c.CommandOverride(intent),
	}
}

// Apply writes an edit through the catalog. A disabled edit discards the
// title and command it carries.
func (c *Catalog) Apply(edit Edit) error {
	if err := c.SetEnabled(edit.Intent, edit.Enabled); err != nil {
		return err
	}
	if !edit.Enabled {
		return nil
	}
	if err := c.SetTitle(edit.Intent, edit.Title); err != nil {
		return err
	}
	return c.SetCommand(edit.Intent, edit.Command)
}
