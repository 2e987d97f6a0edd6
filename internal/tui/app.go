package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rcanales/brewscout/internal/config"
	"github.com/rcanales/brewscout/internal/tui/views"
)

type view int

const (
	viewHome view = iota
	viewProgress
)

// App is the root model. It owns navigation between the menu and a live
// discovery run; each child view is a self-contained bubbletea model.
type App struct {
	current view
	home    views.HomeModel
	prog    views.ProgressModel
	deps    views.RunDeps
	width   int
	height  int
}

func NewApp(deps views.RunDeps) App {
	return App{
		current: viewHome,
		home:    views.NewHomeModel(),
		deps:    deps,
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.StartDiscoveryMsg:
		a.prog = views.NewProgressModel(a.deps, msg.Mode)
		a.current = viewProgress
		return a, a.prog.Init()
	case views.NavigateToHome:
		a.current = viewHome
		return a, nil
	}

	switch a.current {
	case viewProgress:
		model, cmd := a.prog.Update(msg)
		a.prog = model.(views.ProgressModel)
		return a, cmd
	default:
		model, cmd := a.home.Update(msg)
		a.home = model.(views.HomeModel)
		return a, cmd
	}
}

func (a App) View() string {
	switch a.current {
	case viewProgress:
		return a.prog.View()
	default:
		return a.home.View()
	}
}

// Run starts the interactive interface and blocks until the user quits.
func Run(cfg config.Config, apiKey, outputDir string) error {
	app := NewApp(views.RunDeps{
		Config:    cfg,
		APIKey:    apiKey,
		OutputDir: outputDir,
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
