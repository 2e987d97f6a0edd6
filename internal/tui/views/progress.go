package views

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rcanales/brewscout/internal/config"
	"github.com/rcanales/brewscout/internal/engine/discovery"
	"github.com/rcanales/brewscout/internal/engine/filter"
	"github.com/rcanales/brewscout/internal/engine/grid"
	"github.com/rcanales/brewscout/internal/engine/places"
	"github.com/rcanales/brewscout/internal/engine/storage"
	"github.com/rcanales/brewscout/internal/model"
	busevents "github.com/rcanales/brewscout/internal/progress"
	"github.com/rcanales/brewscout/internal/tui/styles"
)

// RunDeps is everything a discovery run needs from the outside.
type RunDeps struct {
	Config    config.Config
	APIKey    string
	OutputDir string
}

// sharedState holds data shared between the discovery goroutine and the TUI.
// Lives behind a pointer so it survives bubbletea's value copies.
type sharedState struct {
	mu     sync.Mutex
	bus    *busevents.Bus
	cancel context.CancelFunc
}

func (s *sharedState) set(bus *busevents.Bus, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus = bus
	s.cancel = cancel
}

func (s *sharedState) getBus() *busevents.Bus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bus
}

func (s *sharedState) getCancel() context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel
}

// ProgressModel renders a live discovery run off the progress bus.
type ProgressModel struct {
	deps      RunDeps
	mode      string
	bar       progress.Model
	startTime time.Time

	done        bool
	confirmQuit bool
	err         error
	summary     *model.Summary
	dbPath      string
	logPath     string
	width       int
	height      int
	shared      *sharedState
}

type progressTickMsg time.Time

type discoveryCompleteMsg struct {
	Summary *model.Summary
	Err     error
}

func NewProgressModel(deps RunDeps, mode string) ProgressModel {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
	)

	ts := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("brewscout_%s", ts)

	return ProgressModel{
		deps:      deps,
		mode:      mode,
		bar:       bar,
		startTime: time.Now(),
		shared:    &sharedState{},
		dbPath:    filepath.Join(deps.OutputDir, baseName+".db"),
		logPath:   filepath.Join(deps.OutputDir, baseName+".log"),
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.startDiscovery(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m ProgressModel) startDiscovery() tea.Cmd {
	shared := m.shared
	deps := m.deps
	mode := m.mode
	dbPath := m.dbPath
	logPath := m.logPath

	return func() tea.Msg {
		if err := os.MkdirAll(deps.OutputDir, 0o755); err != nil {
			return discoveryCompleteMsg{Err: err}
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return discoveryCompleteMsg{Err: err}
		}
		defer logFile.Close()
		logger := log.New(logFile, "", log.LstdFlags)

		store, err := storage.NewStore(dbPath)
		if err != nil {
			return discoveryCompleteMsg{Err: err}
		}
		defer store.Close()

		filterCfg, err := deps.Config.FilterConfig()
		if err != nil {
			return discoveryCompleteMsg{Err: err}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		bus := busevents.New(0, logger)
		shared.set(bus, cancel)

		scheduler := discovery.NewScheduler(
			places.NewClient(deps.APIKey),
			store,
			filter.New(filterCfg),
			bus,
			logger,
			deps.Config.DiscoveryConfig(),
		)
		points := grid.Generate(grid.Mode(mode), deps.Config.GridConfig())

		summary := scheduler.Run(ctx, points)
		return discoveryCompleteMsg{Summary: summary}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if cancel := m.shared.getCancel(); cancel != nil {
				cancel()
			}
			return m, tea.Quit
		case "esc":
			if m.done {
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			if m.confirmQuit {
				if cancel := m.shared.getCancel(); cancel != nil {
					cancel()
				}
				return m, nil
			}
			m.confirmQuit = true
			return m, nil
		case "enter":
			if m.done {
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			if m.confirmQuit {
				m.confirmQuit = false
				return m, nil
			}
		}
		if m.confirmQuit {
			m.confirmQuit = false
		}
	case progressTickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case discoveryCompleteMsg:
		m.done = true
		m.err = msg.Err
		m.summary = msg.Summary
		return m, nil
	}

	var cmd tea.Cmd
	var barModel tea.Model
	barModel, cmd = m.bar.Update(msg)
	m.bar = barModel.(progress.Model)
	return m, cmd
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Discovering coffee shops (%s grid)", m.mode)))
	b.WriteString("\n\n")

	agg := m.aggregates()

	statsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(34).
		Render(m.renderStats(agg))
	b.WriteString(statsBox)
	b.WriteString("\n\n")

	total := agg.TotalPoints + agg.Subdivisions
	var pct float64
	if total > 0 {
		pct = float64(agg.AreasSearched) / float64(total)
	}
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter back • esc back"))
	case m.done:
		label := "Discovery complete!"
		color := styles.Success
		if m.summary != nil && m.summary.Aborted {
			label = "Discovery aborted (partial results kept)"
			color = styles.Warning
		}
		b.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(label))
		if m.summary != nil {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
				Render(fmt.Sprintf("%d unique shops • database: %s", m.summary.UniquePlaces, m.dbPath)))
		}
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter back • esc back"))
	case m.confirmQuit:
		b.WriteString(styles.ErrorText.Render("Press ESC again to abort the run (partial results are kept)"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("esc confirm abort • any key continue"))
	default:
		b.WriteString(styles.StatusBar.Render("esc abort • ctrl+c quit"))
	}

	return b.String()
}

func (m ProgressModel) aggregates() busevents.Aggregates {
	bus := m.shared.getBus()
	if bus == nil {
		return busevents.Aggregates{}
	}
	_, agg, _ := bus.Snapshot()
	return agg
}

func (m ProgressModel) renderStats(agg busevents.Aggregates) string {
	var sb strings.Builder
	elapsed := time.Since(m.startTime).Truncate(time.Second)

	statLabel := lipgloss.NewStyle().Foreground(styles.Muted).Width(14)
	statVal := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)

	row := func(label, value string) {
		sb.WriteString(statLabel.Render(label))
		sb.WriteString(statVal.Render(value))
		sb.WriteString("\n")
	}

	row("Areas:", fmt.Sprintf("%d/%d", agg.AreasSearched, agg.TotalPoints+agg.Subdivisions))
	row("Shops found:", fmt.Sprintf("%d", agg.PlacesFound))
	row("API calls:", fmt.Sprintf("%d/%d", agg.APICallsUsed, m.deps.Config.Discovery.MaxAPICalls))

	subStyle := statVal
	if agg.Subdivisions > 0 {
		subStyle = lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)
	}
	sb.WriteString(statLabel.Render("Subdivisions:"))
	sb.WriteString(subStyle.Render(fmt.Sprintf("%d", agg.Subdivisions)))
	sb.WriteString("\n")

	row("Elapsed:", elapsed.String())
	return sb.String()
}
