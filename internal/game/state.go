package game

import "fmt"

// Status is the top-level game state
type Status uint8

const (
	StatusStartScreen Status = iota
	StatusPlaying
	StatusQuestion
	StatusPromptingUsername
	StatusGameOver
)

// String returns the status name used in snapshots and events
func (s Status) String() string {
	switch s {
	case StatusStartScreen:
		return "start"
	case StatusPlaying:
		return "playing"
	case StatusQuestion:
		return "question"
	case StatusPromptingUsername:
		return "prompting_username"
	case StatusGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// transitions lists every legal edge of the state machine
var transitions = map[Status][]Status{
	StatusStartScreen:       {StatusPlaying},
	StatusPlaying:           {StatusQuestion, StatusPlaying},
	StatusQuestion:          {StatusPlaying, StatusPromptingUsername, StatusGameOver},
	StatusPromptingUsername: {StatusGameOver},
	StatusGameOver:          {StatusPlaying},
}

// CanTransition reports whether from -> to is a legal edge
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned when an action does not apply to the current state
type ErrInvalidTransition struct {
	From   Status
	Action string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Action, e.From)
}

// FailedQuestion is the terminal record of the question that ended the run
type FailedQuestion struct {
	QuestionText      string `json:"questionText"`
	CorrectAnswerText string `json:"correctAnswerText"`
	ExplanationText   string `json:"explanationText,omitempty"`
}

// Synthetic failure records for runs that ended without a real question
var (
	FailedGeneration = FailedQuestion{
		QuestionText:      "AI Error generating question.",
		CorrectAnswerText: "N/A",
	}
	FailedNoQuestion = FailedQuestion{
		QuestionText:      "System Error: No question available.",
		CorrectAnswerText: "N/A",
	}
)

// GameOverData is the terminal snapshot of a run
type GameOverData struct {
	Score               int             `json:"score"`
	TimeSurvivedSeconds int             `json:"timeSurvived"`
	MonstersKilled      int             `json:"monstersKilled"`
	FailedQuestion      *FailedQuestion `json:"failedQuestion,omitempty"`
	Rank                int             `json:"rank,omitempty"` // 1-based, 0 when unknown
	RankPending         bool            `json:"rankPending,omitempty"`
	PlayerName          string          `json:"playerName,omitempty"`
}
