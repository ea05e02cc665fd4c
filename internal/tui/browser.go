// Package tui is a terminal view of the grouped height series. It shows the
// same groups as the web dashboard, with per-person summaries in place of
// charts.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"familymeter/internal/config"
	"familymeter/internal/grouping"
	"familymeter/internal/services"
)

const (
	listWidth     = 34
	chromeHeight  = 6
	defaultHeight = 24
)

// Loader runs the pipeline once
type Loader func(ctx context.Context) (*services.Result, error)

type loadedMsg struct {
	res *services.Result
	err error
}

// groupItem implements list.Item for one chart group
type groupItem struct {
	group *grouping.Group
}

func (i groupItem) Title() string { return i.group.Title }
func (i groupItem) Description() string {
	return fmt.Sprintf("%d osôb, %d meraní", len(i.group.Series), i.group.Observations())
}
func (i groupItem) FilterValue() string { return i.group.Key }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// Browser is the bubbletea model. Every reload runs the pipeline afresh.
type Browser struct {
	ctx     context.Context
	load    Loader
	groups  list.Model
	result  *services.Result
	err     error
	loading bool
	width   int
	height  int
}

// NewBrowser creates a browser that fetches data with load
func NewBrowser(ctx context.Context, load Loader) *Browser {
	groups := list.New(nil, list.NewDefaultDelegate(), listWidth, defaultHeight-chromeHeight)
	groups.Title = "Skupiny"
	groups.SetShowStatusBar(false)
	groups.SetFilteringEnabled(false)
	groups.SetShowHelp(false)

	return &Browser{
		ctx:    ctx,
		load:   load,
		groups: groups,
		height: defaultHeight,
	}
}

// Run starts the program on the terminal and blocks until the user quits
func Run(ctx context.Context, load Loader, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewBrowser(ctx, load), opts...).Run()
	return err
}

// Init is called once when the program starts.
func (b *Browser) Init() tea.Cmd {
	return b.reload()
}

func (b *Browser) reload() tea.Cmd {
	b.loading = true
	ctx, load := b.ctx, b.load
	return func() tea.Msg {
		res, err := load(ctx)
		return loadedMsg{res: res, err: err}
	}
}

// Update is called when a message is received.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.groups.SetSize(listWidth, max(0, msg.Height-chromeHeight))
		return b, nil

	case loadedMsg:
		b.loading = false
		b.err = msg.err
		if msg.err != nil {
			// no partial output from a failed run
			b.result = nil
			return b, b.groups.SetItems(nil)
		}
		b.result = msg.res
		items := make([]list.Item, 0, len(msg.res.Groups.Groups))
		for _, g := range msg.res.Groups.Groups {
			items = append(items, groupItem{group: g})
		}
		return b, b.groups.SetItems(items)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return b, tea.Quit
		case "r":
			if b.loading {
				return b, nil
			}
			return b, b.reload()
		}
	}

	var cmd tea.Cmd
	b.groups, cmd = b.groups.Update(msg)
	return b, cmd
}

// Selected returns the group under the cursor, or nil
func (b *Browser) Selected() *grouping.Group {
	item, ok := b.groups.SelectedItem().(groupItem)
	if !ok {
		return nil
	}
	return item.group
}

// View renders the current state.
func (b *Browser) View() string {
	header := titleStyle.Render(config.AppName)

	var body string
	switch {
	case b.err != nil:
		body = errorStyle.Render("Chyba: " + b.err.Error())
	case b.result == nil:
		body = mutedStyle.Render("Načítavam...")
	default:
		detailWidth := 0
		if b.width > 0 {
			detailWidth = max(20, b.width-listWidth-6)
		}
		left := boxStyle.Render(b.groups.View())
		right := boxStyle.Width(detailWidth).Render(b.renderGroup(b.Selected()))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	footer := footerStyle.Render("↑/↓ skupina • r znovu načítať • q koniec")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (b *Browser) renderGroup(g *grouping.Group) string {
	if g == nil {
		return mutedStyle.Render("Žiadne skupiny")
	}

	lines := []string{titleStyle.Render(g.Title), ""}
	if g.Observations() == 0 {
		lines = append(lines, mutedStyle.Render("Žiadne merania"))
		return strings.Join(lines, "\n")
	}

	for _, s := range g.Series {
		if s.Len() == 0 {
			lines = append(lines, fmt.Sprintf("%-24s %s", s.Name, mutedStyle.Render("bez meraní")))
			continue
		}
		ageMin, ageMax := span(s.Ages)
		hMin, hMax := span(s.Heights)
		lines = append(lines, fmt.Sprintf("%-24s %3d  vek %6.2f - %6.2f  výška %6.1f - %6.1f",
			s.Name, s.Len(), ageMin, ageMax, hMin, hMax))
	}
	return strings.Join(lines, "\n")
}

func span(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
