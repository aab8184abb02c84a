// Package drill is the two-level navigation state: world overview, then one continent.
package drill

// Mode is the current navigation level.
type Mode int

const (
	Overview Mode = iota
	Drilldown
)

func (m Mode) String() string {
	if m == Drilldown {
		return "drilldown"
	}
	return "overview"
}

// State is the view state. Continent is empty iff Mode is Overview.
type State struct {
	Mode      Mode
	Continent string
}

// Action is the transform change a transition asks for.
type Action int

const (
	None  Action = iota
	Zoom         // zoom to To.Continent
	Reset        // restore the startup transform
)

// Transition describes one state change.
type Transition struct {
	From, To State
	Action   Action
}

// Changed reports whether the selected continent changed.
func (t Transition) Changed() bool { return t.Action != None }

// Classifier resolves countries to continents.
type Classifier interface {
	GetCountryContinent(country string) (string, bool)
	Has(continent string) bool
}

type Machine struct {
	table Classifier
	state State
}

func New(table Classifier) *Machine {
	return &Machine{table: table}
}

func (m *Machine) State() State { return m.state }

// Click handles a click on a country shape. Countries without a continent are a no-op,
// as is a click inside the already selected continent.
func (m *Machine) Click(country string) Transition {
	cont, ok := m.table.GetCountryContinent(country)
	if !ok {
		return m.stay()
	}
	return m.enter(cont)
}

// Select drills into a continent by name.
func (m *Machine) Select(continent string) Transition {
	if !m.table.Has(continent) {
		return m.stay()
	}
	return m.enter(continent)
}

// Back returns to the overview. In the overview it is a no-op.
func (m *Machine) Back() Transition {
	if m.state.Mode == Overview {
		return m.stay()
	}
	from := m.state
	m.state = State{Mode: Overview}
	return Transition{From: from, To: m.state, Action: Reset}
}

func (m *Machine) enter(continent string) Transition {
	if m.state.Mode == Drilldown && m.state.Continent == continent {
		return m.stay()
	}
	from := m.state
	m.state = State{Mode: Drilldown, Continent: continent}
	return Transition{From: from, To: m.state, Action: Zoom}
}

func (m *Machine) stay() Transition {
	return Transition{From: m.state, To: m.state, Action: None}
}
