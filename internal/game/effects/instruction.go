package effects

import (
	"fmt"
	"strings"
)

// Op identifies an instruction kind.
type Op string

const (
	OpDamage       Op = "damage"
	OpBlock        Op = "block"
	OpStatus       Op = "status"
	OpDraw         Op = "draw"
	OpRepeat       Op = "repeat"
	OpDrain        Op = "drain"
	OpHeal         Op = "heal"
	OpHurt         Op = "hurt"
	OpLoseHP       Op = "lose_hp"
	OpEnergy       Op = "energy"
	OpSpendEnergy  Op = "spend_energy"
	OpReshuffle    Op = "reshuffle"
	OpCopyCheapest Op = "copy_cheapest"
)

// takesAmount reports whether the op is written with a numeric operand.
func (op Op) takesAmount() bool {
	switch op {
	case OpSpendEnergy, OpReshuffle, OpCopyCheapest:
		return false
	default:
		return true
	}
}

// Target selects a combatant relative to the actor running a program.
type Target string

const (
	// TargetSelf is the combatant running the program.
	TargetSelf Target = "self"
	// TargetFoe is its opponent.
	TargetFoe Target = "foe"
)

// Instruction is one step of an effect program. Fields beyond Op are read
// according to the op: Amount for numeric ops, Target and Status for
// OpStatus, Amount or PerEnergy and Body for OpRepeat.
type Instruction struct {
	Op        Op            `json:"op" yaml:"op"`
	Amount    int           `json:"amount,omitempty" yaml:"amount,omitempty"`
	Target    Target        `json:"target,omitempty" yaml:"target,omitempty"`
	Status    string        `json:"status,omitempty" yaml:"status,omitempty"`
	PerEnergy bool          `json:"per_energy,omitempty" yaml:"per_energy,omitempty"`
	Body      []Instruction `json:"body,omitempty" yaml:"body,omitempty"`
}

// Program is an ordered list of instructions.
type Program []Instruction

// DealDamage deals n damage to the foe through the damage pipeline.
func DealDamage(n int) Instruction { return Instruction{Op: OpDamage, Amount: n} }

// GainBlock adds n block to the actor.
func GainBlock(n int) Instruction { return Instruction{Op: OpBlock, Amount: n} }

// ApplyStatus adds n to a status on target.
func ApplyStatus(target Target, name string, n int) Instruction {
	return Instruction{Op: OpStatus, Target: target, Status: name, Amount: n}
}

// DrawCards draws n cards.
func DrawCards(n int) Instruction { return Instruction{Op: OpDraw, Amount: n} }

// Repeat runs body k times.
func Repeat(k int, body ...Instruction) Instruction {
	return Instruction{Op: OpRepeat, Amount: k, Body: body}
}

// RepeatPerEnergy runs body once per point of the actor's current energy.
func RepeatPerEnergy(body ...Instruction) Instruction {
	return Instruction{Op: OpRepeat, PerEnergy: true, Body: body}
}

// Drain deals n damage to the foe and heals the actor by the hp damage dealt.
func Drain(n int) Instruction { return Instruction{Op: OpDrain, Amount: n} }

// Heal restores n hp to the actor, up to its maximum.
func Heal(n int) Instruction { return Instruction{Op: OpHeal, Amount: n} }

// Hurt deals n unmodified damage to the actor, absorbed by its block.
func Hurt(n int) Instruction { return Instruction{Op: OpHurt, Amount: n} }

// LoseHP removes n hp from the actor, ignoring block.
func LoseHP(n int) Instruction { return Instruction{Op: OpLoseHP, Amount: n} }

// GainEnergy adds n energy to the actor.
func GainEnergy(n int) Instruction { return Instruction{Op: OpEnergy, Amount: n} }

// SpendEnergy sets the actor's energy to 0.
func SpendEnergy() Instruction { return Instruction{Op: OpSpendEnergy} }

// Reshuffle folds the discard pile into the draw pile.
func Reshuffle() Instruction { return Instruction{Op: OpReshuffle} }

// CopyCheapest adds a copy of the cheapest card in hand to the hand.
func CopyCheapest() Instruction { return Instruction{Op: OpCopyCheapest} }

// Validate checks operands recursively.
func (in Instruction) Validate() error {
	switch in.Op {
	case OpDamage, OpBlock, OpDraw, OpDrain, OpHeal, OpHurt, OpLoseHP, OpEnergy:
		if in.Amount < 0 {
			return fmt.Errorf("%s: negative amount %d", in.Op, in.Amount)
		}
	case OpSpendEnergy, OpReshuffle, OpCopyCheapest:
	case OpStatus:
		if in.Status == "" {
			return fmt.Errorf("status: missing name")
		}
		if in.Target != TargetSelf && in.Target != TargetFoe {
			return fmt.Errorf("status %s: invalid target %q", in.Status, in.Target)
		}
		if in.Amount < 0 {
			return fmt.Errorf("status %s: negative amount %d", in.Status, in.Amount)
		}
	case OpRepeat:
		if !in.PerEnergy && in.Amount < 0 {
			return fmt.Errorf("repeat: negative count %d", in.Amount)
		}
		return Program(in.Body).Validate()
	default:
		return fmt.Errorf("unknown instruction %q", in.Op)
	}
	return nil
}

// Validate checks every instruction of the program.
func (p Program) Validate() error {
	for i, in := range p {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

// String renders the instruction in script form.
func (in Instruction) String() string {
	switch in.Op {
	case OpStatus:
		return fmt.Sprintf("status %s %s %d", in.Target, in.Status, in.Amount)
	case OpRepeat:
		count := fmt.Sprint(in.Amount)
		if in.PerEnergy {
			count = "energy"
		}
		return fmt.Sprintf("repeat %s { %s }", count, Program(in.Body))
	default:
		if !in.Op.takesAmount() {
			return string(in.Op)
		}
		return fmt.Sprintf("%s %d", in.Op, in.Amount)
	}
}

// String renders the program in script form, parseable by Parse.
func (p Program) String() string {
	parts := make([]string, len(p))
	for i, in := range p {
		parts[i] = in.String()
	}
	return strings.Join(parts, "; ")
}
