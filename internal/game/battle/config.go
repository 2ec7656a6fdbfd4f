package battle

import "github.com/magefree/deckbattle-server-go/internal/game/status"

// Config holds the rules constants of a battle.
type Config struct {
	HandSize           int
	PlayerMaxHP        int
	PlayerMaxEnergy    int
	LogCapacity        int
	PersistentStatuses []string
	// StrictInvariants panics on invariant violations even with a
	// production logger.
	StrictInvariants bool
}

// DefaultConfig returns the standard rules: a hand of 5, 100 hp, 3 energy
// and a 20 line battle log.
func DefaultConfig() Config {
	return Config{
		HandSize:        5,
		PlayerMaxHP:     100,
		PlayerMaxEnergy: 3,
		LogCapacity:     20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HandSize <= 0 {
		c.HandSize = def.HandSize
	}
	if c.PlayerMaxHP <= 0 {
		c.PlayerMaxHP = def.PlayerMaxHP
	}
	if c.PlayerMaxEnergy <= 0 {
		c.PlayerMaxEnergy = def.PlayerMaxEnergy
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = def.LogCapacity
	}
	return c
}

// statusRegistry builds the decay rules for the configured persistent set.
func (c Config) statusRegistry() *status.Registry {
	kinds := make([]status.Kind, 0, len(c.PersistentStatuses))
	for _, name := range c.PersistentStatuses {
		kinds = append(kinds, status.Kind(name))
	}
	return status.NewRegistry(kinds...)
}
