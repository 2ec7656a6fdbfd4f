package status

import "sort"

// Status is a named counter attached to a combatant.
type Status struct {
	Name      string
	Magnitude int
}

// Copy creates a copy of the status.
func (s *Status) Copy() *Status {
	return &Status{
		Name:      s.Name,
		Magnitude: s.Magnitude,
	}
}

// Table manages the statuses of one combatant.
// An entry with magnitude 0 is equivalent to an absent one; decayed entries
// stay in the table.
type Table struct {
	registry *Registry
	statuses map[string]*Status
}

// NewTable creates an empty table. A nil registry uses the default rules.
func NewTable(registry *Registry) *Table {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Table{
		registry: registry,
		statuses: make(map[string]*Status),
	}
}

// Apply adds amount to the named status, creating it at 0 first if absent.
// Direct application never subtracts: negative amounts are rejected.
func (t *Table) Apply(name string, amount int) bool {
	if name == "" || amount < 0 {
		return false
	}
	s, ok := t.statuses[name]
	if !ok {
		s = &Status{Name: name}
		t.statuses[name] = s
	}
	s.Magnitude += amount
	return true
}

// Get returns the magnitude of the named status, 0 when absent.
func (t *Table) Get(name string) int {
	if s, ok := t.statuses[name]; ok {
		return s.Magnitude
	}
	return 0
}

// Has reports whether the named status is active.
func (t *Table) Has(name string) bool {
	return t.Get(name) > 0
}

// Clear zeroes the named status.
func (t *Table) Clear(name string) {
	if s, ok := t.statuses[name]; ok {
		s.Magnitude = 0
	}
}

// DecayEndOfTurn decrements every positive decaying status by 1 and returns
// the names that changed, sorted.
func (t *Table) DecayEndOfTurn() []string {
	var decayed []string
	for name, s := range t.statuses {
		if s.Magnitude <= 0 || !t.registry.Decays(name) {
			continue
		}
		s.Magnitude--
		decayed = append(decayed, name)
	}
	sort.Strings(decayed)
	return decayed
}

// Len returns the number of entries, including zeroed ones.
func (t *Table) Len() int {
	return len(t.statuses)
}

// Registry returns the decay rules used by the table.
func (t *Table) Registry() *Registry {
	return t.registry
}

// Copy creates a deep copy of the table sharing the same registry.
func (t *Table) Copy() *Table {
	c := NewTable(t.registry)
	for name, s := range t.statuses {
		c.statuses[name] = s.Copy()
	}
	return c
}

// ToView returns the active statuses sorted by name.
func (t *Table) ToView() []View {
	views := make([]View, 0, len(t.statuses))
	for name, s := range t.statuses {
		if s.Magnitude <= 0 {
			continue
		}
		views = append(views, View{Name: name, Magnitude: s.Magnitude})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// View represents a status in the view format.
type View struct {
	Name      string `json:"name"`
	Magnitude int    `json:"magnitude"`
}
