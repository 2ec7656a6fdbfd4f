package sim

import (
	"context"

	"github.com/magefree/deckbattle-server-go/internal/game/replay"
)

// Record plays the recorder's battle with the greedy autoplayer.
func Record(ctx context.Context, rec *replay.Recorder, maxTurns int) error {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	s := rec.Session()
	for s.IsActive() && s.TurnNumber() <= maxTurns {
		if err := ctx.Err(); err != nil {
			return err
		}
		for s.IsActive() {
			view := s.View()
			instanceID, ok := ChooseCard(view)
			if !ok {
				break
			}
			for i, card := range view.Hand {
				if card.InstanceID == instanceID {
					if _, err := rec.Play(i); err != nil {
						return err
					}
					break
				}
			}
		}
		if !s.IsActive() {
			break
		}
		if _, err := rec.EndTurn(ctx); err != nil {
			return err
		}
	}
	return nil
}
