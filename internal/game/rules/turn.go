package rules

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// State is a state of the battle turn machine.
type State string

const (
	StatePlayerTurn State = "player_turn"
	StateEnemyTurn  State = "enemy_turn"
	StateBattleWon  State = "battle_won"
	StateBattleLost State = "battle_lost"
)

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no further actions are accepted in this state.
func (s State) IsTerminal() bool {
	return s == StateBattleWon || s == StateBattleLost
}

// Owner identifies whose turn it is.
type Owner string

const (
	OwnerPlayer Owner = "player"
	OwnerEnemy  Owner = "enemy"
	OwnerNone   Owner = "none"
)

// Transition names.
const (
	TransitionEndTurn   = "end_turn"
	TransitionBeginTurn = "begin_turn"
	TransitionWin       = "win"
	TransitionLose      = "lose"
)

// TurnManager sequences player turn -> enemy turn -> player turn and the two
// terminal outcomes.
type TurnManager struct {
	machine    *fsm.FSM
	turnNumber int
	onChange   func(from, to State)
}

// NewTurnManager creates a turn manager at turn 1, player turn.
func NewTurnManager() *TurnManager {
	tm := &TurnManager{turnNumber: 1}
	live := []string{string(StatePlayerTurn), string(StateEnemyTurn)}
	tm.machine = fsm.NewFSM(
		string(StatePlayerTurn),
		fsm.Events{
			{Name: TransitionEndTurn, Src: []string{string(StatePlayerTurn)}, Dst: string(StateEnemyTurn)},
			{Name: TransitionBeginTurn, Src: []string{string(StateEnemyTurn)}, Dst: string(StatePlayerTurn)},
			{Name: TransitionWin, Src: live, Dst: string(StateBattleWon)},
			{Name: TransitionLose, Src: live, Dst: string(StateBattleLost)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				tm.enterState(State(e.Src), State(e.Dst))
			},
		},
	)
	return tm
}

func (tm *TurnManager) enterState(from, to State) {
	if to == StatePlayerTurn {
		tm.turnNumber++
	}
	if tm.onChange != nil {
		tm.onChange(from, to)
	}
}

// OnTransition registers a callback invoked after every state change.
func (tm *TurnManager) OnTransition(fn func(from, to State)) {
	tm.onChange = fn
}

// Current returns the current state.
func (tm *TurnManager) Current() State {
	return State(tm.machine.Current())
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Owner returns whose turn it is.
func (tm *TurnManager) Owner() Owner {
	switch tm.Current() {
	case StatePlayerTurn:
		return OwnerPlayer
	case StateEnemyTurn:
		return OwnerEnemy
	default:
		return OwnerNone
	}
}

// IsActive reports whether the battle is still being fought.
func (tm *TurnManager) IsActive() bool {
	return !tm.Current().IsTerminal()
}

// Can reports whether the named transition is allowed from the current state.
func (tm *TurnManager) Can(transition string) bool {
	return tm.machine.Can(transition)
}

// EndPlayerTurn hands the turn to the enemy.
func (tm *TurnManager) EndPlayerTurn(ctx context.Context) error {
	return tm.fire(ctx, TransitionEndTurn)
}

// BeginPlayerTurn hands the turn back to the player and advances the turn number.
func (tm *TurnManager) BeginPlayerTurn(ctx context.Context) error {
	return tm.fire(ctx, TransitionBeginTurn)
}

// Win ends the battle with a victory.
func (tm *TurnManager) Win(ctx context.Context) error {
	return tm.fire(ctx, TransitionWin)
}

// Lose ends the battle with a defeat.
func (tm *TurnManager) Lose(ctx context.Context) error {
	return tm.fire(ctx, TransitionLose)
}

func (tm *TurnManager) fire(ctx context.Context, transition string) error {
	if err := tm.machine.Event(ctx, transition); err != nil {
		return fmt.Errorf("turn transition %s from %s: %w", transition, tm.Current(), err)
	}
	return nil
}
