package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeSessionStart
	EventTypeSpawn
	EventTypePlayerHit
	EventTypeKill
	EventTypeQuestionShown
	EventTypeAnswer
	EventTypeGameOver
	EventTypeScoreReported
)

// EventVersion for backwards compatibility of the JSONL log
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Name      string          `json:"name"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	Session   uint64          `json:"session"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeSessionStart:
		return "session_start"
	case EventTypeSpawn:
		return "spawn"
	case EventTypePlayerHit:
		return "player_hit"
	case EventTypeKill:
		return "kill"
	case EventTypeQuestionShown:
		return "question_shown"
	case EventTypeAnswer:
		return "answer"
	case EventTypeGameOver:
		return "game_over"
	case EventTypeScoreReported:
		return "score_reported"
	default:
		return "unknown"
	}
}

// SessionStartPayload records the opening state of a run
type SessionStartPayload struct {
	Seed        int64  `json:"seed"`
	SpawnPolicy string `json:"spawnPolicy"`
	InitialWave int    `json:"initialWave"`
	WorldWidth  int    `json:"worldWidth"`
	WorldHeight int    `json:"worldHeight"`
}

// SpawnPayload records monsters added by the director
type SpawnPayload struct {
	Count      int `json:"count"`
	Population int `json:"population"`
	Wave       int `json:"wave"`
}

// HitPayload records the projectile that struck the player
type HitPayload struct {
	MonsterID    string `json:"monsterId"`
	ProjectileID string `json:"projectileId"`
	Category     string `json:"category"`
}

// KillPayload records monsters destroyed by player projectiles in one tick
type KillPayload struct {
	MonsterIDs []string `json:"monsterIds"`
	Score      int      `json:"score"`
}

// QuestionPayload records where the shown question came from
type QuestionPayload struct {
	Category string `json:"category"`
	Source   string `json:"source"` // "queue" or "on_demand"
}

// AnswerPayload records the player's choice
type AnswerPayload struct {
	MonsterID string `json:"monsterId"`
	Choice    int    `json:"choice"`
	Correct   bool   `json:"correct"`
	Score     int    `json:"score"`
}

// GameOverPayload mirrors the terminal snapshot
type GameOverPayload struct {
	Score          int    `json:"score"`
	TimeSurvived   int    `json:"timeSurvived"`
	MonstersKilled int    `json:"monstersKilled"`
	Reason         string `json:"reason"`
	NextStatus     string `json:"nextStatus"`
}

// ScoreReportedPayload records the leaderboard outcome
type ScoreReportedPayload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
	Error string `json:"error,omitempty"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum, session uint64, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Name:      eventType.String(),
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		Session:   session,
		Payload:   EncodePayload(payload),
	}
}
