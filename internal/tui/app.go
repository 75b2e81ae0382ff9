// Package tui is the terminal front-end: it samples held keys into engine
// input, turns clicks and aim keys into shots, and draws each snapshot.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"ecoroam/internal/game"
	"ecoroam/internal/leaderboard"
	"ecoroam/internal/render"
)

const (
	FPS           = 30
	FrameDuration = time.Second / FPS

	// Terminals report presses and auto-repeats but never releases, so a
	// key counts as held for this long after its last event
	keyTimeout = 150 * time.Millisecond

	// Distance in viewport pixels of the aim point for directional shots
	aimReach = 200
)

// Engine is the part of *game.Engine the UI drives
type Engine interface {
	SetInput(game.Input)
	Shoot(viewX, viewY float64)
	StartGame() error
	Answer(choice int) (bool, error)
	SubmitUsername(name string) error
	SkipUsername() error
	Snapshot() game.Snapshot
}

// Options configures the app
type Options struct {
	ScreenshotDir string // where 'p' writes PNG frames; empty uses the working dir
	Render        render.Options
}

type dir uint8

const (
	dirUp dir = iota
	dirDown
	dirLeft
	dirRight
)

// App runs the terminal UI
type App struct {
	screen tcell.Screen
	engine Engine
	opts   Options

	held     [4]time.Time // last event per movement direction
	nameBuf  []rune
	message  string // one-line feedback under the prompt or HUD
	lastStat game.Status
	quit     bool

	now func() time.Time
}

// New creates the app on an initialized screen
func New(screen tcell.Screen, engine Engine, opts Options) *App {
	return &App{
		screen: screen,
		engine: engine,
		opts:   opts,
		now:    time.Now,
	}
}

// Run processes input and redraws at FPS until the user quits or ctx ends
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse(tcell.MouseButtonEvents)
	a.screen.HideCursor()

	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for !a.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.HandleEvent(ev)
		case <-ticker.C:
			a.Frame()
		}
	}
	return nil
}

// Frame pushes the held-key state to the engine and redraws
func (a *App) Frame() {
	a.engine.SetInput(a.input(a.now()))
	snap := a.engine.Snapshot()
	if snap.Status != a.lastStat {
		a.onStatusChange(a.lastStat, snap.Status)
		a.lastStat = snap.Status
	}
	a.draw(&snap)
	a.screen.Show()
}

func (a *App) onStatusChange(from, to game.Status) {
	switch to {
	case game.StatusQuestion:
		a.screen.Beep()
	case game.StatusPromptingUsername:
		a.nameBuf = a.nameBuf[:0]
		a.message = ""
	case game.StatusPlaying:
		if from != game.StatusQuestion {
			a.message = ""
		}
	}
}

// input reports which directions are held as of now
func (a *App) input(now time.Time) game.Input {
	held := func(d dir) bool {
		t := a.held[d]
		return !t.IsZero() && now.Sub(t) < keyTimeout
	}
	return game.Input{
		Up:    held(dirUp),
		Down:  held(dirDown),
		Left:  held(dirLeft),
		Right: held(dirRight),
	}
}

// HandleEvent dispatches one terminal event
func (a *App) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			a.shootAtCell(x, y)
		}
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		a.quit = true
		return
	}

	snap := a.engine.Snapshot()
	switch snap.Status {
	case game.StatusPromptingUsername:
		a.handlePromptKey(ev)
		return
	case game.StatusQuestion:
		if ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '9' {
			a.answer(int(ev.Rune() - '1'))
			return
		}
	case game.StatusStartScreen:
		if ev.Key() == tcell.KeyEnter {
			a.start()
			return
		}
	case game.StatusGameOver:
		if ev.Key() == tcell.KeyEnter || ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R') {
			a.start()
			return
		}
	}

	now := a.now()
	switch ev.Key() {
	case tcell.KeyUp:
		a.held[dirUp] = now
	case tcell.KeyDown:
		a.held[dirDown] = now
	case tcell.KeyLeft:
		a.held[dirLeft] = now
	case tcell.KeyRight:
		a.held[dirRight] = now
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			a.held[dirUp] = now
		case 's', 'S':
			a.held[dirDown] = now
		case 'a', 'A':
			a.held[dirLeft] = now
		case 'd', 'D':
			a.held[dirRight] = now
		case 'i', 'I':
			a.shootDir(0, -1)
		case 'k', 'K':
			a.shootDir(0, 1)
		case 'j', 'J':
			a.shootDir(-1, 0)
		case 'l', 'L':
			a.shootDir(1, 0)
		case ' ':
			a.shootNearest(&snap)
		case 'p', 'P':
			a.screenshot(&snap)
		case 'q', 'Q':
			a.quit = true
		}
	}
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		name := string(a.nameBuf)
		if _, err := leaderboard.ValidateName(name); err != nil {
			a.message = promptError(err)
			return
		}
		if err := a.engine.SubmitUsername(name); err != nil {
			a.message = promptError(err)
			return
		}
		a.message = ""
	case tcell.KeyEscape:
		if err := a.engine.SkipUsername(); err != nil {
			a.message = err.Error()
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(a.nameBuf); n > 0 {
			a.nameBuf = a.nameBuf[:n-1]
		}
	case tcell.KeyRune:
		if len(a.nameBuf) < leaderboard.MaxNameLength {
			a.nameBuf = append(a.nameBuf, ev.Rune())
		}
	}
}

func promptError(err error) string {
	switch {
	case errors.Is(err, leaderboard.ErrNameRequired), errors.Is(err, game.ErrNameRequired):
		return "Please enter a name"
	case errors.Is(err, leaderboard.ErrNameTooLong), errors.Is(err, game.ErrNameTooLong):
		return fmt.Sprintf("Name too long (max %d chars)", leaderboard.MaxNameLength)
	default:
		return err.Error()
	}
}

func (a *App) start() {
	if err := a.engine.StartGame(); err != nil {
		a.message = err.Error()
		return
	}
	a.held = [4]time.Time{}
	a.message = ""
}

func (a *App) answer(choice int) {
	correct, err := a.engine.Answer(choice)
	switch {
	case err != nil:
		a.message = err.Error()
	case correct:
		a.message = "Correct! +50"
	default:
		a.message = ""
	}
}

// shootAtCell fires toward the viewport point under a terminal cell
func (a *App) shootAtCell(x, y int) {
	cfg := a.engine.Snapshot().Config
	w, h := a.screen.Size()
	vx, vy, ok := cellToView(x, y, w, h, cfg.ViewportWidth, cfg.ViewportHeight)
	if ok {
		a.engine.Shoot(vx, vy)
	}
}

// shootDir fires from the player along a unit direction
func (a *App) shootDir(dx, dy float64) {
	cfg := a.engine.Snapshot().Config
	cx, cy := cfg.ViewportWidth/2, cfg.ViewportHeight/2
	a.engine.Shoot(cx+dx*aimReach, cy+dy*aimReach)
}

// shootNearest fires at the closest monster, if any
func (a *App) shootNearest(snap *game.Snapshot) {
	cfg := snap.Config
	playerX := snap.Player.X + cfg.PlayerSize/2
	playerY := snap.Player.Y + cfg.PlayerSize/2

	best := math.Inf(1)
	var target *game.MonsterSnapshot
	for i := range snap.Monsters {
		m := &snap.Monsters[i]
		d := math.Hypot(m.X+cfg.MonsterSize/2-playerX, m.Y+cfg.MonsterSize/2-playerY)
		if d < best {
			best, target = d, m
		}
	}
	if target == nil {
		return
	}
	a.engine.Shoot(target.X+cfg.MonsterSize/2+snap.Camera.X, target.Y+cfg.MonsterSize/2+snap.Camera.Y)
}

func (a *App) screenshot(snap *game.Snapshot) {
	name := fmt.Sprintf("ecoroam-%s.png", a.now().Format("20060102-150405"))
	path := filepath.Join(a.opts.ScreenshotDir, name)
	if err := render.SavePNG(path, snap, a.opts.Render); err != nil {
		log.Printf("❌ Screenshot failed: %v", err)
		a.message = "Screenshot failed"
		return
	}
	log.Printf("📸 Screenshot saved: %s", path)
	a.message = "Saved " + name
}

// Layout: row 0 is the HUD, rows 1..h-1 map onto the viewport.

func cellToView(x, y, w, h int, vw, vh float64) (float64, float64, bool) {
	rows := h - 1
	if w <= 0 || rows <= 0 || y < 1 || y >= h || x < 0 || x >= w {
		return 0, 0, false
	}
	vx := (float64(x) + 0.5) * vw / float64(w)
	vy := (float64(y-1) + 0.5) * vh / float64(rows)
	return vx, vy, true
}

func viewToCell(vx, vy float64, w, h int, vw, vh float64) (int, int, bool) {
	rows := h - 1
	if !(vx >= 0 && vy >= 0 && vx < vw && vy < vh) || w <= 0 || rows <= 0 {
		return 0, 0, false
	}
	return int(vx * float64(w) / vw), 1 + int(vy*float64(rows)/vh), true
}
