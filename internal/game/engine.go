package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ecoroam/internal/questions"
)

// MaxNameLength is the longest accepted leaderboard name, in characters
const MaxNameLength = 20

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = fmt.Errorf("name too long (max %d chars)", MaxNameLength)
)

// QuestionProvider supplies questions per category. *questions.Manager
// implements it.
type QuestionProvider interface {
	Take(c questions.Category) (questions.Question, bool)
	Fetch(ctx context.Context, c questions.Category) (questions.Question, error)
	Maintain()
	Prefill()
	Reset()
}

// IdentityStore caches the player's name between runs
type IdentityStore interface {
	Name() (string, bool)
	Save(name string) error
}

// ScoreReporter submits a finished run and returns its 1-based rank
// (0 when the entry did not make the list)
type ScoreReporter interface {
	Report(ctx context.Context, name string, score int) (int, error)
}

// EngineOptions wires the engine to its collaborators. Only Config is
// required; a nil Questions provider ends every run at the first hit.
type EngineOptions struct {
	Config    Config
	Clock     Clock
	Seed      int64 // 0 picks a time-based seed
	Questions QuestionProvider
	Identity  IdentityStore
	Reporter  ScoreReporter
}

// pendingHit is the deferred question trigger armed by a monster hit
type pendingHit struct {
	monsterID    string
	projectileID string
	category     questions.Category
	due          time.Time
}

// Engine runs the simulation. All state is guarded by mu; input is
// buffered separately under inputMu and sampled once per Step.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	clock     Clock
	rng       *rand.Rand
	rngSeed   int64
	questions QuestionProvider
	identity  IdentityStore
	reporter  ScoreReporter

	inputMu sync.Mutex
	input   Input
	shots   []shotRequest

	status     Status
	session    uint64
	sessionCtx context.Context
	cancel     context.CancelFunc
	async      sync.WaitGroup

	player       Player
	monsters     []*Monster
	monsterShots []*Projectile
	playerShots  []*Projectile

	spawner     *SpawnDirector
	score       *ScoreTracker
	projectiles *projectileEngine

	hitInFlight bool
	pending     *pendingHit
	fetching    bool
	frozenAt    time.Time
	current     *ActiveQuestion
	gameOver    *GameOverData

	snapshotPool *SnapshotPool
	eventLog     *EventLog

	running   bool
	ticker    *time.Ticker
	stopChan  chan struct{}
	tickCount uint64

	// OnTick receives the duration of every Step (for metrics)
	OnTick func(time.Duration)
	// OnStatusChange is invoked on its own goroutine after each transition
	OnStatusChange func(from, to Status)
}

// NewEngine creates an engine on the start screen
func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config
	if cfg.TickRate == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:          cfg,
		clock:        clock,
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
		questions:    opts.Questions,
		identity:     opts.Identity,
		reporter:     opts.Reporter,
		status:       StatusStartScreen,
		sessionCtx:   ctx,
		cancel:       cancel,
		player:       Player{Pos: cfg.PlayerStart()},
		monsterShots: make([]*Projectile, 0, 32),
		playerShots:  make([]*Projectile, 0, 32),
		snapshotPool: NewSnapshotPool(32),
		eventLog:     NewEventLog(),
		stopChan:     make(chan struct{}),
	}
	e.spawner = NewSpawnDirector(&e.cfg)
	e.score = NewScoreTracker(cfg.ScoreInterval, cfg.ScoreIncrement)
	e.projectiles = newProjectileEngine(&e.cfg)
	e.publishLocked(clock.Now())
	return e, nil
}

// Config returns the tuning the engine runs with
func (e *Engine) Config() Config {
	return e.cfg
}

// Start begins the real-time loop at the configured tick rate
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.Step(e.clock.Now())
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS", e.cfg.TickRate)
}

// Stop halts the loop and cancels any outstanding fetch or report
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session++
	e.cancel()
	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Game engine stopped")
}

// StartEventLog begins writing game events to path (JSONL)
func (e *Engine) StartEventLog(path string) error {
	return e.eventLog.Start(path)
}

// StopEventLog flushes and closes the event log
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLog exposes the event log for stats
func (e *Engine) EventLog() *EventLog {
	return e.eventLog
}

// Wait blocks until every fetch and report goroutine has finished.
// Must not be called while holding the engine lock.
func (e *Engine) Wait() {
	e.async.Wait()
}

// ============================================================================
// Input
// ============================================================================

// SetInput replaces the held-keys state sampled by the next Step
func (e *Engine) SetInput(in Input) {
	e.inputMu.Lock()
	e.input = in
	e.inputMu.Unlock()
}

// Shoot buffers a shot toward the given viewport coordinate. Shots queued
// outside the playing state are discarded.
func (e *Engine) Shoot(viewX, viewY float64) {
	e.inputMu.Lock()
	if len(e.shots) < 16 {
		e.shots = append(e.shots, shotRequest{X: viewX, Y: viewY})
	}
	e.inputMu.Unlock()
}

func (e *Engine) sampleInput() (Input, []shotRequest) {
	e.inputMu.Lock()
	defer e.inputMu.Unlock()
	in := e.input
	shots := e.shots
	e.shots = nil
	return in, shots
}

// ============================================================================
// Simulation
// ============================================================================

// Step advances the simulation to now. It is the single entry point of
// the tick and can be driven headlessly with a ManualClock.
func (e *Engine) Step(now time.Time) {
	start := time.Now()

	e.mu.Lock()
	e.tickCount++
	in, shots := e.sampleInput()

	var maintain bool
	switch e.status {
	case StatusPlaying:
		e.stepPlaying(now, in, shots)
		maintain = e.status == StatusPlaying
	case StatusQuestion:
		e.stepQuestion(now)
	case StatusStartScreen:
		maintain = true
	}

	e.publishLocked(now)
	provider := e.questions
	e.mu.Unlock()

	if maintain && provider != nil {
		provider.Maintain()
	}
	if e.OnTick != nil {
		e.OnTick(time.Since(start))
	}
}

// stepPlaying runs one playing tick in fixed order: input, monster AI,
// monster projectiles, player projectiles, spawning, score
func (e *Engine) stepPlaying(now time.Time, in Input, shots []shotRequest) {
	e.movePlayer(in)
	for _, s := range shots {
		e.firePlayerShot(s)
	}

	fired := updateMonsters(&e.cfg, e.monsters, e.player.Pos, now, e.rng)
	e.monsterShots = append(e.monsterShots, fired...)

	var hit *Projectile
	e.monsterShots, hit = e.projectiles.updateMonsterProjectiles(e.monsterShots, e.player.Pos, e.hitInFlight)
	if hit != nil {
		e.registerHit(now, hit)
		return
	}

	var killed map[string]struct{}
	e.playerShots, killed = e.projectiles.updatePlayerProjectiles(e.playerShots, e.monsters)
	if len(killed) > 0 {
		e.monsters = removeMonsters(e.monsters, killed)
		e.score.AddKills(len(killed), e.cfg.KillBonus)
		ids := make([]string, 0, len(killed))
		for id := range killed {
			ids = append(ids, id)
		}
		e.eventLog.EmitSimple(EventTypeKill, e.tickCount, e.session, KillPayload{MonsterIDs: ids, Score: e.score.Score})
	}

	if n := e.spawner.Due(now, len(e.monsters)); n > 0 {
		e.spawn(now, n)
	}

	e.score.Tick(now)
}

func (e *Engine) movePlayer(in Input) {
	var dx, dy float64
	if in.Left {
		dx -= e.cfg.PlayerSpeed
	}
	if in.Right {
		dx += e.cfg.PlayerSpeed
	}
	if in.Up {
		dy -= e.cfg.PlayerSpeed
	}
	if in.Down {
		dy += e.cfg.PlayerSpeed
	}
	e.player.Pos = ClampBox(e.player.Pos.Add(Vec2{dx, dy}), e.cfg.PlayerSize, e.cfg.WorldWidth, e.cfg.WorldHeight)
}

// firePlayerShot launches a projectile from the player's center toward a
// viewport point. The camera keeps the player centered in the viewport.
func (e *Engine) firePlayerShot(s shotRequest) {
	angle := math.Atan2(s.Y-e.cfg.ViewportHeight/2, s.X-e.cfg.ViewportWidth/2)
	e.playerShots = append(e.playerShots, &Projectile{
		ID:    uuid.NewString(),
		Pos:   Center(e.player.Pos, e.cfg.PlayerSize),
		Angle: angle,
	})
}

func (e *Engine) spawn(now time.Time, n int) {
	for i := 0; i < n; i++ {
		e.monsters = append(e.monsters, newMonster(&e.cfg, now, e.rng))
	}
	e.eventLog.EmitSimple(EventTypeSpawn, e.tickCount, e.session, SpawnPayload{
		Count:      n,
		Population: len(e.monsters),
		Wave:       e.spawner.Waves(),
	})
}

// registerHit freezes the run and arms the deferred question trigger.
// The in-flight flag keeps it to one pending trigger per freeze.
func (e *Engine) registerHit(now time.Time, p *Projectile) {
	if e.hitInFlight {
		return
	}
	e.hitInFlight = true
	e.frozenAt = now
	e.pending = &pendingHit{
		monsterID:    p.MonsterID,
		projectileID: p.ID,
		category:     p.MonsterType,
		due:          now.Add(e.cfg.HitDelay),
	}
	e.setStatus(StatusQuestion)
	e.eventLog.EmitSimple(EventTypePlayerHit, e.tickCount, e.session, HitPayload{
		MonsterID:    p.MonsterID,
		ProjectileID: p.ID,
		Category:     p.MonsterType.String(),
	})
}

// stepQuestion fires the deferred trigger once its delay has elapsed
func (e *Engine) stepQuestion(now time.Time) {
	if e.pending == nil || now.Before(e.pending.due) {
		return
	}
	hit := *e.pending
	e.pending = nil

	if e.questions == nil {
		e.endRun(now, FailedNoQuestion, "no question provider")
		return
	}

	if q, ok := e.questions.Take(hit.category); ok {
		e.showQuestion(hit, q, "queue")
		return
	}

	// Queue empty: fetch on demand. The result is applied only if the
	// session is still the one that armed this trigger.
	e.fetching = true
	session, ctx, provider := e.session, e.sessionCtx, e.questions
	e.async.Add(1)
	go func() {
		defer e.async.Done()
		q, err := provider.Fetch(ctx, hit.category)
		e.resolveFetch(session, hit, q, err)
	}()
}

func (e *Engine) resolveFetch(session uint64, hit pendingHit, q questions.Question, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if session != e.session || e.status != StatusQuestion || !e.fetching {
		return
	}
	e.fetching = false
	now := e.clock.Now()

	if err == nil {
		err = q.Validate()
	}
	switch {
	case errors.Is(err, questions.ErrQueueEmpty), errors.Is(err, questions.ErrInvalidQuestion):
		log.Printf("❌ No usable %s question: %v", hit.category, err)
		e.endRun(now, FailedNoQuestion, "no question")
	case err != nil:
		log.Printf("❌ On-demand %s question failed: %v", hit.category, err)
		e.endRun(now, FailedGeneration, "generation failed")
	default:
		e.showQuestion(hit, q, "on_demand")
	}
	e.publishLocked(now)
}

func (e *Engine) showQuestion(hit pendingHit, q questions.Question, source string) {
	e.current = &ActiveQuestion{
		MonsterID:    hit.monsterID,
		ProjectileID: hit.projectileID,
		Category:     hit.category,
		Question:     q,
	}
	e.eventLog.EmitSimple(EventTypeQuestionShown, e.tickCount, e.session, QuestionPayload{
		Category: hit.category.String(),
		Source:   source,
	})
}

// ============================================================================
// Actions
// ============================================================================

// StartGame resets every store and timer and begins a new run. It is the
// restart path from GameOver and may also interrupt a run in progress.
func (e *Engine) StartGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !CanTransition(e.status, StatusPlaying) {
		return &ErrInvalidTransition{From: e.status, Action: "start"}
	}

	now := e.clock.Now()

	// Invalidate everything the previous session scheduled
	e.session++
	e.cancel()
	e.sessionCtx, e.cancel = context.WithCancel(context.Background())
	e.hitInFlight = false
	e.pending = nil
	e.fetching = false
	e.current = nil
	e.gameOver = nil

	e.player = Player{Pos: e.cfg.PlayerStart()}
	clear(e.monsters)
	e.monsters = e.monsters[:0]
	clear(e.monsterShots)
	e.monsterShots = e.monsterShots[:0]
	clear(e.playerShots)
	e.playerShots = e.playerShots[:0]
	e.sampleInput()

	e.score.Reset(now)
	if e.questions != nil {
		e.questions.Reset()
		e.questions.Prefill()
	}

	initial := e.spawner.Reset(now)
	e.eventLog.EmitSimple(EventTypeSessionStart, e.tickCount, e.session, SessionStartPayload{
		Seed:        e.rngSeed,
		SpawnPolicy: e.cfg.SpawnPolicy.String(),
		InitialWave: initial,
		WorldWidth:  int(e.cfg.WorldWidth),
		WorldHeight: int(e.cfg.WorldHeight),
	})
	e.spawn(now, initial)

	e.setStatus(StatusPlaying)
	log.Printf("🎮 Run %d started with %d monsters", e.session, initial)
	e.publishLocked(now)
	return nil
}

// Answer resolves the active question. It reports whether the choice was
// correct.
func (e *Engine) Answer(choice int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusQuestion || e.current == nil {
		return false, &ErrInvalidTransition{From: e.status, Action: "answer"}
	}
	q := e.current.Question
	if choice < 0 || choice >= len(q.Choices) {
		return false, fmt.Errorf("choice %d out of range", choice)
	}

	now := e.clock.Now()
	correct := q.IsCorrect(choice)
	monsterID := e.current.MonsterID

	if correct {
		before := len(e.monsters)
		e.monsters = removeMonsters(e.monsters, map[string]struct{}{monsterID: {}})
		if len(e.monsters) < before {
			e.score.AddKills(1, 0)
		}
		e.score.AddBonus(e.cfg.CorrectAnswerBonus)

		// Grace period: no projectile in the air, every cooldown restarted
		clear(e.monsterShots)
		e.monsterShots = e.monsterShots[:0]
		resetShotTimers(&e.cfg, e.monsters, now, e.rng)

		e.spawner.Pause(now.Sub(e.frozenAt))
		e.score.Resume(now)
		e.current = nil
		e.hitInFlight = false
		e.setStatus(StatusPlaying)
	} else {
		e.endRun(now, FailedQuestion{
			QuestionText:      q.Text,
			CorrectAnswerText: q.CorrectText(),
			ExplanationText:   q.Explanation,
		}, "wrong answer")
	}

	e.eventLog.EmitSimple(EventTypeAnswer, e.tickCount, e.session, AnswerPayload{
		MonsterID: monsterID,
		Choice:    choice,
		Correct:   correct,
		Score:     e.score.Score,
	})
	e.publishLocked(now)
	return correct, nil
}

// endRun records the terminal snapshot and routes to the username prompt
// or straight to GameOver
func (e *Engine) endRun(now time.Time, failed FailedQuestion, reason string) {
	e.current = nil
	e.pending = nil
	e.fetching = false
	e.hitInFlight = false

	e.gameOver = &GameOverData{
		Score:               e.score.Score,
		TimeSurvivedSeconds: e.score.SecondsSurvived(),
		MonstersKilled:      e.score.MonstersKilled,
		FailedQuestion:      &failed,
	}

	next := StatusGameOver
	if e.gameOver.Score > 0 {
		if name, ok := e.knownName(); ok {
			e.gameOver.PlayerName = name
			e.reportLocked(name)
		} else {
			next = StatusPromptingUsername
		}
	}

	e.setStatus(next)
	e.eventLog.EmitSimple(EventTypeGameOver, e.tickCount, e.session, GameOverPayload{
		Score:          e.gameOver.Score,
		TimeSurvived:   e.gameOver.TimeSurvivedSeconds,
		MonstersKilled: e.gameOver.MonstersKilled,
		Reason:         reason,
		NextStatus:     next.String(),
	})
	log.Printf("💀 Run %d over (%s): score %d", e.session, reason, e.gameOver.Score)
}

func (e *Engine) knownName() (string, bool) {
	if e.identity == nil {
		return "", false
	}
	name, ok := e.identity.Name()
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// SubmitUsername stores the name for future runs, reports the score and
// moves to GameOver
func (e *Engine) SubmitUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPromptingUsername {
		return &ErrInvalidTransition{From: e.status, Action: "submit a name"}
	}

	if e.identity != nil {
		if err := e.identity.Save(name); err != nil {
			log.Printf("⚠️ Failed to save identity: %v", err)
		}
	}
	e.gameOver.PlayerName = name
	e.reportLocked(name)
	e.setStatus(StatusGameOver)
	e.publishLocked(e.clock.Now())
	return nil
}

// SkipUsername goes to GameOver without reporting the score
func (e *Engine) SkipUsername() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPromptingUsername {
		return &ErrInvalidTransition{From: e.status, Action: "skip the name prompt"}
	}
	e.setStatus(StatusGameOver)
	e.publishLocked(e.clock.Now())
	return nil
}

// reportLocked submits the finished run in the background. The rank is
// applied only if the session has not moved on.
func (e *Engine) reportLocked(name string) {
	if e.reporter == nil {
		return
	}
	e.gameOver.RankPending = true
	session, ctx, reporter, score := e.session, e.sessionCtx, e.reporter, e.gameOver.Score

	e.async.Add(1)
	go func() {
		defer e.async.Done()
		rank, err := reporter.Report(ctx, name, score)
		e.applyRank(session, name, score, rank, err)
	}()
}

func (e *Engine) applyRank(session uint64, name string, score, rank int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload := ScoreReportedPayload{Name: name, Score: score, Rank: rank}
	if err != nil {
		payload.Error = err.Error()
		log.Printf("⚠️ Leaderboard submission failed: %v", err)
	}

	if session != e.session || e.gameOver == nil {
		return
	}
	e.gameOver.RankPending = false
	if err == nil {
		e.gameOver.Rank = rank
	}
	e.eventLog.EmitSimple(EventTypeScoreReported, e.tickCount, e.session, payload)
	e.publishLocked(e.clock.Now())
}

func (e *Engine) setStatus(to Status) {
	from := e.status
	e.status = to
	if cb := e.OnStatusChange; cb != nil && from != to {
		go cb(from, to)
	}
}

// ============================================================================
// Snapshots
// ============================================================================

// Status returns the current state
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Snapshot returns a copy of the latest published frame
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// publishLocked writes the current state into the next pool slot
func (e *Engine) publishLocked(now time.Time) {
	snap := e.snapshotPool.AcquireWrite()
	snap.Timestamp = now
	snap.Tick = e.tickCount
	snap.Session = e.session
	snap.Status = e.status
	snap.Config = e.cfg

	snap.Player = e.player.Pos
	center := Center(e.player.Pos, e.cfg.PlayerSize)
	snap.Camera = Vec2{e.cfg.ViewportWidth/2 - center.X, e.cfg.ViewportHeight/2 - center.Y}

	for _, m := range e.monsters {
		snap.Monsters = append(snap.Monsters, MonsterSnapshot{
			ID:       m.ID,
			Type:     m.Type.String(),
			X:        m.Pos.X,
			Y:        m.Pos.Y,
			Charging: m.Charging(),
		})
	}
	for _, p := range e.monsterShots {
		snap.MonsterProjectiles = append(snap.MonsterProjectiles, ProjectileSnapshot{
			ID:          p.ID,
			X:           p.Pos.X,
			Y:           p.Pos.Y,
			Angle:       p.Angle,
			MonsterType: p.MonsterType.String(),
		})
	}
	for _, p := range e.playerShots {
		snap.PlayerProjectiles = append(snap.PlayerProjectiles, ProjectileSnapshot{
			ID:    p.ID,
			X:     p.Pos.X,
			Y:     p.Pos.Y,
			Angle: p.Angle,
		})
	}

	snap.Score = e.score.Score
	snap.TimeSurvived = e.score.SecondsSurvived()
	snap.MonstersKilled = e.score.MonstersKilled
	snap.Wave = e.spawner.Waves()
	snap.NextBatch = e.spawner.BatchSize()

	snap.HitFlash = e.status == StatusQuestion && e.pending != nil
	if e.current != nil {
		q := *e.current
		snap.Question = &q
	}
	if e.gameOver != nil {
		g := *e.gameOver
		snap.GameOver = &g
	}

	e.snapshotPool.PublishWrite()
}
