package server

import (
	"encoding/json"
)

// Client message types.
const (
	MsgStartBattle = "start_battle"
	MsgPlayCard    = "play_card"
	MsgConvertCard = "convert_card"
	MsgEndTurn     = "end_turn"
	MsgView        = "view"
	MsgEndBattle   = "end_battle"
)

// Server message types.
const (
	MsgBattleView   = "battle_view"
	MsgActionResult = "action_result"
	MsgBattleEvents = "battle_events"
	MsgBattleClosed = "battle_closed"
	MsgError        = "error"
)

// WSMessage is the envelope for every websocket frame in both directions.
type WSMessage struct {
	Type     string          `json:"type"`
	BattleID string          `json:"battle_id,omitempty"`
	Success  *bool           `json:"success,omitempty"`
	Error    string          `json:"error,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// StartBattleRequest is the payload of start_battle. Zero values pick a
// random enemy, the starter deck and full health.
type StartBattleRequest struct {
	EnemyID  int   `json:"enemy_id,omitempty"`
	Deck     []int `json:"deck,omitempty"`
	PlayerHP int   `json:"player_hp,omitempty"`
}

// CardRequest is the payload of play_card and convert_card.
type CardRequest struct {
	InstanceID string `json:"instance_id"`
}

func encode(msgType, battleID string, data any) ([]byte, error) {
	msg := WSMessage{Type: msgType, BattleID: battleID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}

func encodeResult(msgType, battleID string, success bool, errMsg string, data any) ([]byte, error) {
	msg := WSMessage{Type: msgType, BattleID: battleID, Success: &success, Error: errMsg}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}
