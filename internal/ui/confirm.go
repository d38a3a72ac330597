package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// ConfirmAction asks before a destructive session action. used is false
// when no backend could run.
func ConfirmAction(backend string, title string, command string) (approved bool, used bool, err error) {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var confirmErr error
		switch candidate {
		case BackendBubbleTea:
			approved, confirmErr = confirmWithBubbleTea(title, command)
		case BackendHuh:
			approved, confirmErr = confirmWithHuh(title, command)
		case BackendTView:
			approved, confirmErr = confirmWithTView(title, command)
		default:
			continue
		}
		if confirmErr != nil {
			if firstErr == nil {
				firstErr = confirmErr
			}
			continue
		}
		return approved, true, nil
	}
	return false, false, firstErr
}

// ConfirmPlain prompts on a line-oriented terminal. Only "y" and "yes"
// approve.
func ConfirmPlain(in io.Reader, out io.Writer, title string, command string) (bool, error) {
	fmt.Fprintf(out, "%s? %s [y/N]: ", strings.TrimSpace(title), strings.TrimSpace(command))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

type bubbleConfirmModel struct {
	title    string
	command  string
	approved bool
	done     bool
}

func (m bubbleConfirmModel) Init() tea.Cmd { return nil }

func (m bubbleConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(k.String()) {
		case "y":
			m.approved = true
			m.done = true
			return m, tea.Quit
		case "n", "esc", "ctrl+c", "enter":
			m.approved = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m bubbleConfirmModel) View() string {
	lines := []string{
		titleStyle.Render(m.title + "?"),
		"",
		commandStyle.Render(m.command),
		"",
		hintStyle.Render("[y] continue  [n] cancel"),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func confirmWithBubbleTea(title string, command string) (bool, error) {
	model := bubbleConfirmModel{title: strings.TrimSpace(title), command: strings.TrimSpace(command)}
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(bubbleConfirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh(title string, command string) (bool, error) {
	approved := false
	prompt := huh.NewConfirm().
		Title(strings.TrimSpace(title) + "?").
		Description(strings.TrimSpace(command)).
		Affirmative(strings.TrimSpace(title)).
		Negative("Cancel").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(title string, command string) (bool, error) {
	app := tview.NewApplication()
	approved := false
	label := strings.TrimSpace(title)

	modal := tview.NewModal().
		SetText(fmt.Sprintf("%s?\n\n%s", label, strings.TrimSpace(command))).
		AddButtons([]string{label, "Cancel"}).
		SetDoneFunc(func(idx int, _ string) {
			approved = idx == 0
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	return approved, nil
}
