package battle

import (
	"time"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/game/status"
	"github.com/magefree/deckbattle-server-go/internal/game/watchers"
)

// CombatantView is the presentation form of a combatant.
type CombatantView struct {
	HP       int           `json:"hp"`
	MaxHP    int           `json:"max_hp"`
	Block    int           `json:"block"`
	Statuses []status.View `json:"statuses"`
}

// PlayerView adds the player's energy.
type PlayerView struct {
	CombatantView
	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`
}

// IntentView is the telegraphed enemy move.
type IntentView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EnemyView adds the enemy's identity and intent.
type EnemyView struct {
	CombatantView
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Intent *IntentView `json:"intent,omitempty"`
}

// HandCardView is a card in hand with its legal actions.
type HandCardView struct {
	cards.View
	Playable    bool `json:"playable"`
	Convertible bool `json:"convertible"`
}

// View is a read-only snapshot of a session.
type View struct {
	BattleID            string         `json:"battle_id"`
	State               rules.State    `json:"state"`
	Turn                int            `json:"turn"`
	Active              bool           `json:"active"`
	Outcome             Outcome        `json:"outcome"`
	Player              PlayerView     `json:"player"`
	Enemy               EnemyView      `json:"enemy"`
	Hand                []HandCardView `json:"hand"`
	DrawPileCount       int            `json:"draw_pile_count"`
	DiscardPileCount    int            `json:"discard_pile_count"`
	DeckSize            int            `json:"deck_size"`
	CardsPlayedThisTurn int            `json:"cards_played_this_turn"`
	CurrencyGained      int            `json:"currency_gained"`
	Log                 []LogEntry     `json:"log"`
}

func combatantView(c *Combatant) CombatantView {
	return CombatantView{
		HP:       c.HP,
		MaxHP:    c.MaxHP,
		Block:    c.Block,
		Statuses: c.Statuses.ToView(),
	}
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		BattleID: s.ID,
		State:    s.turn.Current(),
		Turn:     s.turn.TurnNumber(),
		Active:   s.active(),
		Outcome:  s.outcome,
		Player: PlayerView{
			CombatantView: combatantView(&s.Player.Combatant),
			Energy:        s.Player.Energy,
			MaxEnergy:     s.Player.MaxEnergy,
		},
		Enemy: EnemyView{
			CombatantView: combatantView(&s.Enemy.Combatant),
			ID:            s.Enemy.TemplateID,
			Name:          s.Enemy.Name,
		},
		DrawPileCount:       s.Supply.DrawSize(),
		DiscardPileCount:    s.Supply.DiscardSize(),
		DeckSize:            s.Supply.DeckSize(),
		CardsPlayedThisTurn: s.cardsPlayedThisTurn,
		CurrencyGained:      s.currencyGained,
		Log:                 s.log.lines(),
	}
	if s.Enemy.Intent != nil {
		v.Enemy.Intent = &IntentView{Name: s.Enemy.Intent.Name, Description: s.Enemy.Intent.Description}
	}
	for _, card := range s.Supply.Hand() {
		playable := s.refusal(card) == ""
		v.Hand = append(v.Hand, HandCardView{
			View:        card.ToView(),
			Playable:    playable,
			Convertible: playable && card.Convertible(),
		})
	}
	return v
}

// Summary is the report handed to progression when a battle is over.
type Summary struct {
	BattleID    string               `json:"battle_id"`
	EnemyID     int                  `json:"enemy_id"`
	EnemyName   string               `json:"enemy_name"`
	Outcome     Outcome              `json:"outcome"`
	Turns       int                  `json:"turns"`
	PlayerHP    int                  `json:"player_hp"`
	PlayerMaxHP int                  `json:"player_max_hp"`
	DeckSize    int                  `json:"deck_size"`
	CardsDrawn  int                  `json:"cards_drawn"`
	Reshuffles  int                  `json:"reshuffles"`
	Stats       watchers.BattleStats `json:"stats"`
	StartedAt   time.Time            `json:"started_at"`
	EndedAt     time.Time            `json:"ended_at"`
}

// Summary returns the battle report. For a battle still in progress the
// outcome is ongoing and EndedAt is zero.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

func (s *Session) summary() Summary {
	return Summary{
		BattleID:    s.ID,
		EnemyID:     s.Enemy.TemplateID,
		EnemyName:   s.Enemy.Name,
		Outcome:     s.outcome,
		Turns:       s.turn.TurnNumber(),
		PlayerHP:    s.Player.HP,
		PlayerMaxHP: s.Player.MaxHP,
		DeckSize:    s.Supply.DeckSize(),
		CardsDrawn:  s.drawStats.Drawn(),
		Reshuffles:  s.drawStats.Reshuffles(),
		Stats:       s.stats.Stats(),
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
	}
}

// TurnStats returns the telemetry of the current player turn.
func (s *Session) TurnStats() watchers.TurnStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnStats.Stats()
}
