package ui

import (
	"errors"
	"strings"

	"github.com/ashwch/sessionctl/internal/index"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

const pickerTitle = "sessionctl"

type pickerOption struct {
	ID          string
	Label       string
	Description string
}

// PickItem lets the user choose one of items. used is false when no
// backend could run; a cancelled picker returns used=true and ok=false.
func PickItem(backend string, items []index.Item) (picked index.Item, ok bool, used bool, err error) {
	if len(items) == 0 {
		return index.Item{}, false, false, nil
	}
	options := buildPickerOptions(items)

	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			id      string
			pickErr error
		)
		switch candidate {
		case BackendBubbleTea:
			id, pickErr = pickWithBubbleTea(options)
		case BackendHuh:
			id, pickErr = pickWithHuh(options)
		case BackendTView:
			id, pickErr = pickWithTView(options)
		default:
			continue
		}
		if pickErr != nil {
			if firstErr == nil {
				firstErr = pickErr
			}
			continue
		}
		for _, item := range items {
			if item.ID == id {
				return item, true, true, nil
			}
		}
		return index.Item{}, false, true, nil
	}
	return index.Item{}, false, false, firstErr
}

func buildPickerOptions(items []index.Item) []pickerOption {
	options := make([]pickerOption, 0, len(items))
	for _, item := range items {
		label := strings.TrimSpace(item.Subtitle)
		if label == "" {
			label = item.Text
		}
		description := item.Description
		if command := strings.TrimSpace(item.Command); command != "" {
			description += " · " + command
		}
		options = append(options, pickerOption{ID: item.ID, Label: label, Description: description})
	}
	return options
}

func pickWithHuh(options []pickerOption) (string, error) {
	huhOptions := make([]huh.Option[string], 0, len(options))
	for _, option := range options {
		huhOptions = append(huhOptions, huh.NewOption(option.Label+"  "+option.Description, option.ID))
	}

	choice := options[0].ID
	prompt := huh.NewSelect[string]().
		Title(pickerTitle).
		Description("Choose a session action").
		Options(huhOptions...).
		Filtering(true).
		Height(huhSelectHeight(len(huhOptions))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())

	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return choice, nil
}

type bubblePickerItem struct {
	option pickerOption
}

func (i bubblePickerItem) Title() string       { return i.option.Label }
func (i bubblePickerItem) Description() string { return i.option.Description }
func (i bubblePickerItem) FilterValue() string { return i.option.Label + " " + i.option.ID }

type bubblePickerModel struct {
	list      list.Model
	selection string
	cancelled bool
	options   int
}

func newBubblePickerModel(options []pickerOption) bubblePickerModel {
	items := make([]list.Item, 0, len(options))
	for _, option := range options {
		items = append(items, bubblePickerItem{option: option})
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	width, height := bubblePickerSize(80, 24, len(items))
	picker := list.New(items, delegate, width, height)
	picker.Title = pickerTitle
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(true)
	return bubblePickerModel{list: picker, options: len(items)}
}

func (m bubblePickerModel) Init() tea.Cmd { return nil }

func (m bubblePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		width, height := bubblePickerSize(k.Width, k.Height, m.options)
		m.list.SetSize(width, height)
		return m, nil
	case tea.KeyMsg:
		// Let the filter input consume keys while it is active.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(bubblePickerItem); ok {
				m.selection = item.option.ID
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m bubblePickerModel) View() string {
	return m.list.View()
}

func pickWithBubbleTea(options []pickerOption) (string, error) {
	final, err := tea.NewProgram(newBubblePickerModel(options), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	out, ok := final.(bubblePickerModel)
	if !ok || out.cancelled {
		return "", nil
	}
	return out.selection, nil
}

func pickWithTView(options []pickerOption) (string, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle(pickerTitle)
	listView.ShowSecondaryText(true)

	selected := ""
	for idx, option := range options {
		option := option
		shortcut := rune(0)
		if idx < 9 {
			shortcut = rune('1' + idx)
		}
		listView.AddItem(option.Label, option.Description, shortcut, func() {
			selected = option.ID
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func bubblePickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	if optionCount < 1 {
		optionCount = 1
	}

	maxWidth := termWidth
	minWidth := 32
	if maxWidth < minWidth {
		minWidth = maxWidth
	}
	width := clampInt(termWidth-4, minWidth, maxWidth)

	// Two lines per item with descriptions shown.
	desiredHeight := clampInt(optionCount, 3, 8)*2 + 6

	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = termHeight
	}
	minHeight := 8
	if maxHeight < minHeight {
		minHeight = maxHeight
	}
	height := clampInt(desiredHeight, minHeight, maxHeight)
	return width, height
}

func huhSelectHeight(optionCount int) int {
	if optionCount < 1 {
		optionCount = 1
	}
	return clampInt(optionCount+1, 4, 10)
}
