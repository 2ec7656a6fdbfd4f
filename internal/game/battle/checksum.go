package battle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/status"
)

// Checksum returns a SHA-256 over a canonical form of the battle state.
// Instance ids, timestamps and the log are excluded, so two sessions driven
// by the same seed and actions agree.
func (s *Session) Checksum() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := sha256.Sum256(s.canonical())
	return hex.EncodeToString(sum[:])
}

func (s *Session) canonical() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "BATTLE:%s|%d|%s|%d|%d\n",
		s.turn.Current(), s.turn.TurnNumber(), s.outcome, s.cardsPlayedThisTurn, s.currencyGained)
	fmt.Fprintf(&buf, "PLAYER:%d|%d|%d|%d|%d\n",
		s.Player.HP, s.Player.MaxHP, s.Player.Block, s.Player.Energy, s.Player.MaxEnergy)
	writeStatuses(&buf, s.Player.Statuses)

	intent := ""
	if s.Enemy.Intent != nil {
		intent = s.Enemy.Intent.Name
	}
	fmt.Fprintf(&buf, "ENEMY:%d|%s|%d|%d|%d|%s\n",
		s.Enemy.TemplateID, s.Enemy.Name, s.Enemy.HP, s.Enemy.MaxHP, s.Enemy.Block, intent)
	writeStatuses(&buf, s.Enemy.Statuses)

	writePile(&buf, "DRAW", s.Supply.DrawPile())
	writePile(&buf, "HAND", s.Supply.Hand())
	writePile(&buf, "DISCARD", s.Supply.DiscardPile())
	return buf.Bytes()
}

// ToView is already sorted by name.
func writeStatuses(buf *bytes.Buffer, table *status.Table) {
	for _, st := range table.ToView() {
		fmt.Fprintf(buf, "STATUS:%s=%d\n", st.Name, st.Magnitude)
	}
}

func writePile(buf *bytes.Buffer, name string, pile []*cards.Instance) {
	buf.WriteString(name)
	buf.WriteByte(':')
	for i, card := range pile {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, "%d", card.ID)
	}
	buf.WriteByte('\n')
}
