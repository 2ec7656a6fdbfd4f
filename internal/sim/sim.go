// Package sim plays battles headlessly with a greedy autoplayer.
package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/magefree/deckbattle-server-go/internal/game/battle"
	"github.com/magefree/deckbattle-server-go/internal/game/cards"
)

// DefaultMaxTurns bounds a simulated battle. Battles still running after it
// are abandoned.
const DefaultMaxTurns = 100

// ChooseCard picks the card the autoplayer plays next: the most expensive
// playable card, earliest in hand on ties. Zero-cost attacks scale with
// energy, so they rank at the energy left.
func ChooseCard(view battle.View) (string, bool) {
	best := -1
	for i, card := range view.Hand {
		if !card.Playable {
			continue
		}
		if best == -1 || rank(card, view) > rank(view.Hand[best], view) {
			best = i
		}
	}
	if best == -1 {
		return "", false
	}
	return view.Hand[best].InstanceID, true
}

func rank(card battle.HandCardView, view battle.View) int {
	if card.Cost == 0 && card.Category == cards.CategoryAttack {
		return view.Player.Energy
	}
	return card.Cost
}

// Runner drives battles on an engine.
type Runner struct {
	engine   *battle.Engine
	logger   *zap.Logger
	maxTurns int
}

// NewRunner creates a runner. maxTurns <= 0 uses DefaultMaxTurns.
func NewRunner(engine *battle.Engine, maxTurns int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Runner{engine: engine, logger: logger, maxTurns: maxTurns}
}

// Run plays one battle against a random enemy and returns its summary.
func (r *Runner) Run(ctx context.Context, deck []cards.Card, opts ...battle.StartOption) (battle.Summary, error) {
	s, err := r.engine.StartRandomBattle(deck, opts...)
	if err != nil {
		return battle.Summary{}, err
	}

	for s.IsActive() && s.TurnNumber() <= r.maxTurns {
		if err := ctx.Err(); err != nil {
			r.engine.EndBattle(s.ID)
			return battle.Summary{}, err
		}
		if err := r.playTurn(ctx, s); err != nil {
			r.engine.EndBattle(s.ID)
			return battle.Summary{}, err
		}
	}

	summary, err := r.engine.EndBattle(s.ID)
	if err != nil {
		return battle.Summary{}, err
	}
	r.logger.Debug("simulated battle",
		zap.String("battle_id", summary.BattleID),
		zap.String("enemy", summary.EnemyName),
		zap.String("outcome", string(summary.Outcome)),
		zap.Int("turns", summary.Turns),
	)
	return summary, nil
}

func (r *Runner) playTurn(ctx context.Context, s *battle.Session) error {
	for s.IsActive() {
		instanceID, ok := ChooseCard(s.View())
		if !ok {
			break
		}
		res, err := r.engine.PlayCard(s.ID, instanceID)
		if err != nil {
			return err
		}
		if !res.Accepted {
			return fmt.Errorf("autoplayer chose unplayable card %s: %s", instanceID, res.Reason)
		}
	}
	if !s.IsActive() {
		return nil
	}
	_, err := r.engine.EndTurn(ctx, s.ID)
	return err
}

// RunMany plays n battles with up to parallel running at once. Results
// keep battle order.
func (r *Runner) RunMany(ctx context.Context, n, parallel int, deck func() ([]cards.Card, error)) ([]battle.Summary, error) {
	summaries := make([]battle.Summary, n)
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			d, err := deck()
			if err != nil {
				return err
			}
			summary, err := r.Run(ctx, d)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Tally counts outcomes.
func Tally(summaries []battle.Summary) map[battle.Outcome]int {
	out := make(map[battle.Outcome]int)
	for _, s := range summaries {
		out[s.Outcome]++
	}
	return out
}
