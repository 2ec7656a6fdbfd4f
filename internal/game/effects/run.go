package effects

import "go.uber.org/zap"

// DamageReport is the outcome of one hit.
type DamageReport struct {
	DamageToHP    int `json:"damage_to_hp"`
	BlockAbsorbed int `json:"block_absorbed"`
}

// Context is the capability surface a program runs against, seen from the
// acting combatant. Battles hand a fresh context to every program; nothing
// here reaches global state.
type Context interface {
	// DealDamage runs base damage from the actor to its foe through the
	// damage pipeline.
	DealDamage(base int) DamageReport
	// GainBlock adds block to the actor.
	GainBlock(amount int)
	// ApplyStatus adds amount to a status on the target.
	ApplyStatus(target Target, name string, amount int)
	// DrawCards draws up to n cards for the actor and returns how many
	// arrived in hand. Actors without a card supply draw nothing.
	DrawCards(n int) int
	// Heal restores hp to the actor, clamped at its maximum, and returns
	// the hp actually restored.
	Heal(amount int) int
	// Hurt damages the actor through its own block without modifiers.
	Hurt(amount int) DamageReport
	// LoseHP removes hp from the actor directly.
	LoseHP(amount int)
	// Energy returns the actor's current energy.
	Energy() int
	// GainEnergy adds energy to the actor.
	GainEnergy(amount int)
	// SpendEnergy sets the actor's energy to 0.
	SpendEnergy()
	// ReshuffleDiscard folds the discard pile into the draw pile.
	ReshuffleDiscard()
	// CopyCheapest adds a copy of the lowest cost card in hand to the hand.
	CopyCheapest()
}

// Result aggregates what a program did.
type Result struct {
	Hits        []DamageReport `json:"hits,omitempty"`
	DamageToHP  int            `json:"damage_to_hp"`
	Blocked     int            `json:"blocked"`
	BlockGained int            `json:"block_gained"`
	Healed      int            `json:"healed"`
	Drawn       int            `json:"drawn"`
}

func (r *Result) hit(rep DamageReport) {
	r.Hits = append(r.Hits, rep)
	r.DamageToHP += rep.DamageToHP
	r.Blocked += rep.BlockAbsorbed
}

// Interpreter executes programs against a Context.
type Interpreter struct {
	logger *zap.Logger
}

// NewInterpreter creates an interpreter. A nil logger is replaced by a no-op.
func NewInterpreter(logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{logger: logger}
}

// Run executes every instruction of prog in order. Instructions keep
// running after a combatant dies; the caller decides when the battle ends.
func (it *Interpreter) Run(ctx Context, prog Program) Result {
	var res Result
	it.run(ctx, prog, &res)
	return res
}

func (it *Interpreter) run(ctx Context, prog Program, res *Result) {
	for _, in := range prog {
		switch in.Op {
		case OpDamage:
			res.hit(ctx.DealDamage(in.Amount))
		case OpBlock:
			ctx.GainBlock(in.Amount)
			res.BlockGained += in.Amount
		case OpStatus:
			ctx.ApplyStatus(in.Target, in.Status, in.Amount)
		case OpDraw:
			res.Drawn += ctx.DrawCards(in.Amount)
		case OpDrain:
			rep := ctx.DealDamage(in.Amount)
			res.hit(rep)
			if rep.DamageToHP > 0 {
				res.Healed += ctx.Heal(rep.DamageToHP)
			}
		case OpHeal:
			res.Healed += ctx.Heal(in.Amount)
		case OpHurt:
			ctx.Hurt(in.Amount)
		case OpLoseHP:
			ctx.LoseHP(in.Amount)
		case OpEnergy:
			ctx.GainEnergy(in.Amount)
		case OpSpendEnergy:
			ctx.SpendEnergy()
		case OpReshuffle:
			ctx.ReshuffleDiscard()
		case OpCopyCheapest:
			ctx.CopyCheapest()
		case OpRepeat:
			times := in.Amount
			if in.PerEnergy {
				times = ctx.Energy()
			}
			for i := 0; i < times; i++ {
				it.run(ctx, in.Body, res)
			}
		default:
			it.logger.Warn("skipping unknown instruction", zap.String("op", string(in.Op)))
		}
	}
}
