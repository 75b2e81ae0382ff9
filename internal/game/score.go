package game

import "time"

// ScoreTracker accumulates score, survival time and kills for one run
type ScoreTracker struct {
	Score          int
	Survived       time.Duration
	MonstersKilled int

	interval  time.Duration
	increment int
	nextTick  time.Time
}

// NewScoreTracker creates a tracker that awards increment every interval
func NewScoreTracker(interval time.Duration, increment int) *ScoreTracker {
	return &ScoreTracker{interval: interval, increment: increment}
}

// Reset zeroes the run and schedules the first increment
func (s *ScoreTracker) Reset(now time.Time) {
	s.Score = 0
	s.Survived = 0
	s.MonstersKilled = 0
	s.nextTick = now.Add(s.interval)
}

// Resume restarts the interval after the simulation was frozen
func (s *ScoreTracker) Resume(now time.Time) {
	s.nextTick = now.Add(s.interval)
}

// Tick awards every elapsed interval and returns how many were awarded
func (s *ScoreTracker) Tick(now time.Time) int {
	if s.interval <= 0 {
		return 0
	}
	n := 0
	for !now.Before(s.nextTick) {
		s.Survived += s.interval
		s.Score += s.increment
		s.nextTick = s.nextTick.Add(s.interval)
		n++
	}
	return n
}

// SecondsSurvived returns whole seconds survived
func (s *ScoreTracker) SecondsSurvived() int {
	return int(s.Survived / time.Second)
}

// AddKills records kills and their bonus
func (s *ScoreTracker) AddKills(n, bonusEach int) {
	s.MonstersKilled += n
	s.Score += n * bonusEach
}

// AddBonus adds points without a kill
func (s *ScoreTracker) AddBonus(points int) {
	s.Score += points
}
