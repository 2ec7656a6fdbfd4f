package watchers

import (
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

// Metadata keys set on card events.
const (
	MetaCategory = "category"
	MetaCardID   = "card_id"
	MetaCardName = "card_name"
	MetaBlock    = "block"
)

// Watcher keys.
const (
	KeyBattleStats = "BattleStatsWatcher"
	KeyTurnStats   = "TurnStatsWatcher"
	KeyCardsDrawn  = "CardsDrawnWatcher"
)

// BattleStats is the battle-wide telemetry consumed by progression.
type BattleStats struct {
	CardsPlayed    int `json:"cards_played"`
	AttacksPlayed  int `json:"attacks_played"`
	DefensePlayed  int `json:"defense_played"`
	CardsConverted int `json:"cards_converted"`
	DamageDealt    int `json:"damage_dealt"`
	DamageTaken    int `json:"damage_taken"`
	BlockGained    int `json:"block_gained"`
	CurrencyGained int `json:"currency_gained"`
	BiggestHit     int `json:"biggest_hit"`
	TurnsTaken     int `json:"turns_taken"`
}

// BattleStatsWatcher accumulates BattleStats for one battle.
type BattleStatsWatcher struct {
	*rules.BaseWatcher
	stats BattleStats
}

// NewBattleStatsWatcher creates a new battle stats watcher.
func NewBattleStatsWatcher() *BattleStatsWatcher {
	return &BattleStatsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeBattle, KeyBattleStats),
	}
}

// Watch implements the Watcher interface.
func (w *BattleStatsWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventCardPlayed:
		w.stats.CardsPlayed++
		switch event.Metadata[MetaCategory] {
		case "attack":
			w.stats.AttacksPlayed++
		case "skill":
			if event.Metadata[MetaBlock] != "" && event.Metadata[MetaBlock] != "0" {
				w.stats.DefensePlayed++
			}
		}
	case rules.EventCardConverted:
		w.stats.CardsConverted++
	case rules.EventDamageDealt:
		w.stats.DamageDealt += event.Amount
		if event.Amount > w.stats.BiggestHit {
			w.stats.BiggestHit = event.Amount
		}
	case rules.EventDamageTaken:
		w.stats.DamageTaken += event.Amount
	case rules.EventBlockGained:
		if event.TargetID == rules.TargetPlayer {
			w.stats.BlockGained += event.Amount
		}
	case rules.EventCurrencyGained:
		w.stats.CurrencyGained += event.Amount
	case rules.EventTurnEnded:
		w.stats.TurnsTaken++
	default:
		return
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *BattleStatsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.stats = BattleStats{}
}

// Stats returns a snapshot of the accumulated stats.
func (w *BattleStatsWatcher) Stats() BattleStats {
	return w.stats
}

// TurnStats is the telemetry of the current player turn.
type TurnStats struct {
	CardsPlayed   int `json:"cards_played"`
	AttacksPlayed int `json:"attacks_played"`
	DamageDealt   int `json:"damage_dealt"`
	BlockGained   int `json:"block_gained"`
}

// TurnStatsWatcher tracks TurnStats. The battle resets it when a new player
// turn begins.
type TurnStatsWatcher struct {
	*rules.BaseWatcher
	stats TurnStats
}

// NewTurnStatsWatcher creates a new turn stats watcher.
func NewTurnStatsWatcher() *TurnStatsWatcher {
	return &TurnStatsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeTurn, KeyTurnStats),
	}
}

// Watch implements the Watcher interface.
func (w *TurnStatsWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventCardPlayed, rules.EventCardConverted:
		w.stats.CardsPlayed++
		if event.Type == rules.EventCardPlayed && event.Metadata[MetaCategory] == "attack" {
			w.stats.AttacksPlayed++
		}
	case rules.EventDamageDealt:
		w.stats.DamageDealt += event.Amount
	case rules.EventBlockGained:
		if event.TargetID != rules.TargetPlayer {
			return
		}
		w.stats.BlockGained += event.Amount
	default:
		return
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *TurnStatsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.stats = TurnStats{}
}

// Stats returns a snapshot of the current turn's stats.
func (w *TurnStatsWatcher) Stats() TurnStats {
	return w.stats
}

// CardsDrawnWatcher counts cards drawn and reshuffles over the battle.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn      int
	reshuffles int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	return &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeBattle, KeyCardsDrawn),
	}
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventCardsDrawn:
		w.drawn += event.Amount
	case rules.EventReshuffled:
		w.reshuffles++
	default:
		return
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.drawn = 0
	w.reshuffles = 0
}

// Drawn returns the number of cards drawn.
func (w *CardsDrawnWatcher) Drawn() int { return w.drawn }

// Reshuffles returns how often the discard pile was folded back.
func (w *CardsDrawnWatcher) Reshuffles() int { return w.reshuffles }
