package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/battle"
	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/enemies"
)

var errNoBattle = errors.New("no battle in progress")

func (h *Hub) handleMessage(ctx context.Context, c *Client, msg WSMessage) {
	h.logger.Debug("message received",
		zap.String("type", msg.Type),
		zap.String("battle_id", c.battleID),
	)

	var err error
	switch msg.Type {
	case MsgStartBattle:
		err = h.startBattle(ctx, c, msg.Data)
	case MsgPlayCard:
		err = h.cardAction(ctx, c, msg.Data, false)
	case MsgConvertCard:
		err = h.cardAction(ctx, c, msg.Data, true)
	case MsgEndTurn:
		err = h.endTurn(ctx, c)
	case MsgView:
		err = h.sendView(c)
	case MsgEndBattle:
		err = h.endBattle(ctx, c)
	default:
		err = errors.New("unknown message type: " + msg.Type)
	}

	if err != nil {
		h.sendError(c, msg.Type, err)
	}
}

func (h *Hub) sendError(c *Client, msgType string, err error) {
	frame, encErr := encodeResult(MsgError, c.battleID, false, err.Error(), map[string]string{"request": msgType})
	if encErr != nil {
		h.logger.Error("failed to encode error", zap.Error(encErr))
		return
	}
	h.deliver(c, frame)
}

func (h *Hub) send(c *Client, msgType string, data any) {
	frame, err := encode(msgType, c.battleID, data)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.deliver(c, frame)
}

func (h *Hub) buildDeck(ids []int) ([]cards.Card, error) {
	if len(ids) == 0 {
		return h.engine.Cards().StarterDeck()
	}
	deck := make([]cards.Card, 0, len(ids))
	for _, id := range ids {
		card, err := h.engine.Cards().GetByID(id)
		if err != nil {
			return nil, err
		}
		deck = append(deck, card)
	}
	return deck, nil
}

func (h *Hub) pickEnemy(id int) (enemies.Template, error) {
	if id == 0 {
		return h.engine.Enemies().Random(h.engine.Random()), nil
	}
	return h.engine.Enemies().GetByID(id)
}

func (h *Hub) startBattle(ctx context.Context, c *Client, data json.RawMessage) error {
	var req StartBattleRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}
	}
	deck, err := h.buildDeck(req.Deck)
	if err != nil {
		return err
	}
	enemy, err := h.pickEnemy(req.EnemyID)
	if err != nil {
		return err
	}

	if c.battleID != "" {
		h.releaseBattle(ctx, c)
	}

	// The owner is registered before the battle exists so the start
	// notification reaches the client.
	battleID := uuid.NewString()
	h.mu.Lock()
	h.owners[battleID] = c
	c.battleID = battleID
	h.mu.Unlock()

	s, err := h.engine.StartBattle(deck, enemy, battle.WithBattleID(battleID), battle.WithPlayerHP(req.PlayerHP))
	if err != nil {
		h.mu.Lock()
		delete(h.owners, battleID)
		c.battleID = ""
		h.mu.Unlock()
		return err
	}

	h.logger.Info("battle started over websocket",
		zap.String("battle_id", s.ID),
		zap.String("enemy", enemy.Name),
		zap.Int("deck_size", len(deck)),
	)
	h.send(c, MsgBattleView, s.View())
	return nil
}

func (h *Hub) session(c *Client) (*battle.Session, error) {
	if c.battleID == "" {
		return nil, errNoBattle
	}
	return h.engine.Get(c.battleID)
}

func (h *Hub) cardAction(ctx context.Context, c *Client, data json.RawMessage, convert bool) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var req CardRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	instanceID := strings.TrimSpace(req.InstanceID)
	if instanceID == "" {
		return errors.New("instance_id is required")
	}

	var (
		accepted bool
		reason   string
		result   any
	)
	if convert {
		res, err := h.engine.ConvertToCurrency(s.ID, instanceID)
		if err != nil {
			return err
		}
		accepted, reason, result = res.Accepted, res.Reason, res
	} else {
		res, err := h.engine.PlayCard(s.ID, instanceID)
		if err != nil {
			return err
		}
		accepted, reason, result = res.Accepted, res.Reason, res
	}

	h.sendResult(c, accepted, reason, result)
	h.afterAction(ctx, c, s)
	return nil
}

func (h *Hub) endTurn(ctx context.Context, c *Client) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	res, err := h.engine.EndTurn(ctx, s.ID)
	if err != nil {
		return err
	}
	h.sendResult(c, res.Accepted, res.Reason, res)
	h.afterAction(ctx, c, s)
	return nil
}

func (h *Hub) sendResult(c *Client, accepted bool, reason string, result any) {
	frame, err := encodeResult(MsgActionResult, c.battleID, accepted, reason, result)
	if err != nil {
		h.logger.Error("failed to encode action result", zap.Error(err))
		return
	}
	h.deliver(c, frame)
}

// afterAction sends the new view and closes the battle once it is over.
func (h *Hub) afterAction(ctx context.Context, c *Client, s *battle.Session) {
	h.send(c, MsgBattleView, s.View())
	if s.Outcome() != battle.OutcomeOngoing {
		h.releaseBattle(ctx, c)
	}
}

func (h *Hub) sendView(c *Client) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	h.send(c, MsgBattleView, s.View())
	return nil
}

func (h *Hub) endBattle(ctx context.Context, c *Client) error {
	if c.battleID == "" {
		return errNoBattle
	}
	h.releaseBattle(ctx, c)
	return nil
}

// releaseBattle detaches the client from its battle, records the summary
// and tells the client.
func (h *Hub) releaseBattle(ctx context.Context, c *Client) {
	battleID := c.battleID
	summary, ok := h.closeBattle(ctx, battleID)
	if ok {
		h.send(c, MsgBattleClosed, summary)
	}

	h.mu.Lock()
	delete(h.owners, battleID)
	c.battleID = ""
	h.mu.Unlock()
}
