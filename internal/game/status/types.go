package status

import "sort"

// Kind names a status effect.
type Kind string

const (
	KindStrength      Kind = "strength"
	KindMetallicize   Kind = "metallicize"
	KindWeak          Kind = "weak"
	KindVulnerable    Kind = "vulnerable"
	KindBurn          Kind = "burn"
	KindDemonForm     Kind = "demon_form"
	KindBarricade     Kind = "barricade"
	KindNoDraw        Kind = "no_draw"
	KindNextTurnBlock Kind = "next_turn_block"
	KindBerserk       Kind = "berserk"
	KindBattleFlow    Kind = "battle_flow"
)

// String returns the status name.
func (k Kind) String() string {
	return string(k)
}

// Definition describes how a status behaves over time.
// Decays marks duration counters that lose one point at end of turn;
// persistent statuses keep their magnitude for the whole battle.
type Definition struct {
	Kind        Kind
	Decays      bool
	Description string
}

// DefaultPersistent lists the statuses that never decay.
var DefaultPersistent = []Kind{KindStrength, KindMetallicize}

var builtinDefinitions = []Definition{
	{Kind: KindStrength, Description: "Adds its magnitude to every attack."},
	{Kind: KindMetallicize, Description: "Grants block equal to its magnitude at end of turn."},
	{Kind: KindWeak, Description: "Deals 25% less damage."},
	{Kind: KindVulnerable, Description: "Takes 50% more damage."},
	{Kind: KindBurn, Description: "Burning."},
	{Kind: KindDemonForm, Description: "Gains 2 strength at the start of each turn."},
	{Kind: KindBarricade, Description: "Block does not expire."},
	{Kind: KindNoDraw, Description: "Cannot draw additional cards this turn."},
	{Kind: KindNextTurnBlock, Description: "Gains block at the start of next turn."},
	{Kind: KindBerserk, Description: "Gains energy at the start of each turn."},
	{Kind: KindBattleFlow, Description: "Every third card played in a turn draws a card."},
}

// Registry holds the status definitions known to a battle.
type Registry struct {
	defs map[Kind]Definition
}

// NewRegistry builds a registry of the builtin statuses where exactly the
// named statuses are persistent. An empty list falls back to DefaultPersistent.
func NewRegistry(persistent ...Kind) *Registry {
	if len(persistent) == 0 {
		persistent = DefaultPersistent
	}
	keep := make(map[Kind]bool, len(persistent))
	for _, k := range persistent {
		keep[k] = true
	}

	r := &Registry{defs: make(map[Kind]Definition, len(builtinDefinitions))}
	for _, def := range builtinDefinitions {
		def.Decays = !keep[def.Kind]
		r.defs[def.Kind] = def
	}
	for k := range keep {
		if _, ok := r.defs[k]; !ok {
			r.defs[k] = Definition{Kind: k, Decays: false}
		}
	}
	return r
}

// DefaultRegistry returns a registry with the builtin decay rules.
func DefaultRegistry() *Registry {
	return NewRegistry()
}

// Define adds or replaces a definition.
func (r *Registry) Define(def Definition) {
	r.defs[def.Kind] = def
}

// Lookup returns the definition for name. Unknown statuses are duration counters.
func (r *Registry) Lookup(name string) Definition {
	if def, ok := r.defs[Kind(name)]; ok {
		return def
	}
	return Definition{Kind: Kind(name), Decays: true}
}

// Decays reports whether the named status loses a point at end of turn.
func (r *Registry) Decays(name string) bool {
	return r.Lookup(name).Decays
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Kind < defs[j].Kind })
	return defs
}
