package tui

import (
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"covermap/internal/catalog"
	"covermap/internal/config"
	"covermap/internal/continent"
	"covermap/internal/drill"
	"covermap/internal/geom"
	"covermap/internal/render"
	"covermap/internal/resolve"
	"covermap/internal/tooltip"
	"covermap/internal/viewport"
)

type loadState int

const (
	loadPending loadState = iota
	loadReady
	loadFailed
)

// Options wires a Model. Loader and Watcher may be nil.
type Options struct {
	Config  *config.Config
	Table   *continent.Table
	Loader  *geom.Loader
	Catalog *catalog.Catalog
	Watcher *catalog.Watcher
	Logger  *zap.Logger
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool
	showAttrs   bool
	searching   bool

	status    string
	statusErr bool

	cfg     *config.Config
	log     *zap.Logger
	table   *continent.Table
	loader  *geom.Loader
	watcher *catalog.Watcher

	// boundary data
	load    loadState
	loadErr error
	dataset *geom.Dataset
	scene   *render.Scene
	rays    *resolve.RayCaster

	// services
	locations []catalog.ServiceLocation
	services  *catalog.Index

	// view
	machine  *drill.Machine
	ctrl     *viewport.Controller
	anim     *viewport.Animator
	locked   bool
	surface  string
	debounce *resolve.Debouncer
	screen   viewport.Screen
	frame    *render.Frame
	styles   render.Styles

	// hover
	hoverContinent string
	hoverCountry   string
	tip            tooltip.Overlay
	pointerIn      bool
	pointerLat     float64
	pointerLng     float64
	pointerGeo     bool

	// drag
	pressed    bool
	dragged    bool
	lastX      int
	lastY      int
	interacted bool

	// sidebar, services table, search
	l   list.Model
	tbl table.Model
	ti  textinput.Model
}

func New(o Options) Model {
	cfg := o.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tbl := o.Table
	if tbl == nil {
		tbl = continent.Default()
	}
	m := Model{
		helpVisible: true,
		status:      "loading boundary data",
		cfg:         cfg,
		log:         log,
		table:       tbl,
		loader:      o.Loader,
		watcher:     o.Watcher,
		machine:     drill.New(tbl),
		anim:        viewport.NewAnimator(cfg.GetTransition()),
		debounce:    resolve.NewDebouncer(cfg.GetDebounce()),
		surface:     cfg.Interaction.Surface,
		styles:      render.DefaultStyles(),
	}
	initial := viewport.CenteredOn(cfg.Map.CenterLat, cfg.Map.CenterLng, cfg.Map.InitialZoom)
	var strategy viewport.Strategy
	if cfg.Interaction.ZoomStrategy == config.StrategyFixed {
		strategy = fixedStrategy(cfg)
	}
	m.ctrl = viewport.New(initial, cfg.Map.MinScale, cfg.Map.MaxScale, strategy)

	d := list.NewDefaultDelegate()
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Continents"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)

	m.ti = textinput.New()
	m.ti.Placeholder = "country name"
	m.ti.Prompt = "/ "
	m.ti.CharLimit = 64
	m.ti.ShowSuggestions = true

	if o.Catalog != nil {
		m.setServices(o.Catalog)
	} else {
		m.setServices(&catalog.Catalog{})
	}
	return m
}

func fixedStrategy(cfg *config.Config) viewport.Fixed {
	t := make(map[string]viewport.Transform, len(cfg.FixedZoom))
	for name, f := range cfg.FixedZoom {
		t[name] = viewport.Transform{TranslateX: f.TranslateX, TranslateY: f.TranslateY, Scale: f.Scale}
	}
	return viewport.Fixed{Table: t}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchDataset(), waitForServices(m.watcher))
}

// State is the current view state.
func (m Model) State() drill.State { return m.machine.State() }

// Locked reports whether a programmatic transition is running.
func (m Model) Locked() bool { return m.locked }
