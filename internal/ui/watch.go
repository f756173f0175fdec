package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/ui/style"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/logger"
)

const (
	defaultRefresh = 30 * time.Second
	recentLogLines = 3
	tableHeight    = 8
	staticBanner   = "Upstream APIs are unavailable. Showing static sample data."
)

// SnapshotSource часть market.Service, нужная экрану
type SnapshotSource interface {
	Snapshot(ctx context.Context, ids []string) (market.Snapshot, error)
}

// Options настройки экрана наблюдения
type Options struct {
	IDs      []string
	Interval time.Duration
	// Logs, если задан, показывает последние строки лога под таблицей
	Logs *logger.Ring
}

// Model модель bubbletea экрана наблюдения
type Model struct {
	ctx      context.Context
	source   SnapshotSource
	ids      []string
	interval time.Duration
	logs     *logger.Ring

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap
	styles  style.Styles

	snapshot   market.Snapshot
	hasData    bool
	loading    bool
	err        error
	lastUpdate time.Time
	took       time.Duration
}

// NewModel создает экран наблюдения. ctx ограничивает каждое обновление.
func NewModel(ctx context.Context, source SnapshotSource, opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = defaultRefresh
	}

	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(style.Base01).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(style.Base03).
		Background(style.Cyan)
	t.SetStyles(ts)

	return Model{
		ctx:      ctx,
		source:   source,
		ids:      opts.IDs,
		interval: opts.Interval,
		logs:     opts.Logs,
		table:    t,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		styles:   style.DefaultStyles(),
		loading:  true,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Symbol", Width: 10},
		{Title: "Name", Width: 18},
		{Title: "Price", Width: 14},
		{Title: "24h", Width: 9},
		{Title: "Volume 24h", Width: 12},
		{Title: "Liquidity", Width: 12},
	}
}

// Init запускает первое обновление
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

func (m Model) fetch() tea.Cmd {
	ctx, source, ids := m.ctx, m.source, m.ids
	return func() tea.Msg {
		start := time.Now()
		snap, err := source.Snapshot(ctx, ids)
		return SnapshotMsg{Snapshot: snap, Err: err, Took: time.Since(start)}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update обрабатывает сообщения
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		m.loading = false
		m.took = msg.Took
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.err = nil
			m.snapshot = msg.Snapshot
			m.hasData = true
			m.lastUpdate = time.Now()
			m.table.SetRows(rows(msg.Snapshot.Trending.Tokens))
		}
		return m, m.tick()

	case TickMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View отрисовывает экран
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	if m.hasData && !m.snapshot.Trending.Live {
		b.WriteString(m.styles.Banner.Render(staticBanner))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Refresh failed: " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.hasData {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		b.WriteString(m.pricesLine())
		b.WriteString("\n")
	} else if m.err == nil {
		b.WriteString(m.spinner.View() + " Loading market data...\n")
	}

	if m.logs != nil {
		for _, e := range m.logs.Recent(recentLogLines) {
			line := fmt.Sprintf("%s %-5s %s", e.Time.Format("15:04:05"), e.Level.CapitalString(), e.Message)
			b.WriteString(m.styles.Muted.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header() string {
	title := m.styles.Title.Render("Market Dashboard")
	if !m.hasData {
		return title
	}

	tr := m.snapshot.Trending
	badge := m.styles.SourceBadge(tr.Live).Render(string(tr.Source))

	status := fmt.Sprintf("updated %s in %s", m.lastUpdate.Format("15:04:05"), m.took.Round(time.Millisecond))
	if tr.Cached {
		status += " (cached)"
	}
	if m.loading {
		status = m.spinner.View() + " refreshing"
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, "  ", m.styles.Muted.Render(status))
}

func (m Model) pricesLine() string {
	pr := m.snapshot.Prices
	if len(pr.Quotes) == 0 && len(pr.Missing) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.ids))
	for _, id := range market.NormalizeIDs(m.ids) {
		q, ok := pr.Quotes[id]
		if !ok {
			parts = append(parts, m.styles.Muted.Render(id+" n/a"))
			continue
		}
		change := m.changeStyle(q.USD24hChange).Render(formatChange(q.USD24hChange))
		parts = append(parts, fmt.Sprintf("%s %s %s", id, formatPrice(decimal.NewFromFloat(q.USD)), change))
	}
	return strings.Join(parts, "  |  ")
}

func (m Model) changeStyle(v float64) lipgloss.Style {
	if v < 0 {
		return m.styles.Negative
	}
	return m.styles.Positive
}

func rows(tokens []token.CanonicalToken) []table.Row {
	out := make([]table.Row, 0, len(tokens))
	for i, t := range tokens {
		out = append(out, table.Row{
			fmt.Sprintf("%d", i+1),
			t.BaseToken.Symbol,
			t.BaseToken.Name,
			formatPrice(t.PriceUSD),
			formatChange(t.PriceChange24h),
			formatCompact(t.Volume24h.InexactFloat64()),
			formatCompact(t.Liquidity.USD),
		})
	}
	return out
}

func formatPrice(d decimal.Decimal) string {
	switch {
	case d.IsZero():
		return "$0"
	case d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1)):
		return "$" + d.StringFixed(2)
	default:
		return "$" + d.Round(8).String()
	}
}

func formatChange(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func formatCompact(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
