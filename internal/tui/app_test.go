package tui

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"ecoroam/internal/game"
	"ecoroam/internal/questions"
)

type shot struct{ x, y float64 }

type fakeEngine struct {
	snap      game.Snapshot
	input     game.Input
	shots     []shot
	starts    int
	answers   []int
	submitted []string
	skipped   int
}

func (f *fakeEngine) SetInput(in game.Input)     { f.input = in }
func (f *fakeEngine) Shoot(x, y float64)         { f.shots = append(f.shots, shot{x, y}) }
func (f *fakeEngine) StartGame() error           { f.starts++; return nil }
func (f *fakeEngine) Answer(c int) (bool, error) { f.answers = append(f.answers, c); return c == 0, nil }
func (f *fakeEngine) SkipUsername() error        { f.skipped++; return nil }
func (f *fakeEngine) Snapshot() game.Snapshot    { return f.snap }

func (f *fakeEngine) SubmitUsername(name string) error {
	f.submitted = append(f.submitted, name)
	return nil
}

func newTestApp(t *testing.T, status game.Status) (*App, *fakeEngine, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)

	cfg := game.DefaultConfig()
	player := game.Vec2{X: 400, Y: 300}
	eng := &fakeEngine{snap: game.Snapshot{
		Status: status,
		Player: player,
		Camera: game.Vec2{
			X: cfg.ViewportWidth/2 - (player.X + cfg.PlayerSize/2),
			Y: cfg.ViewportHeight/2 - (player.Y + cfg.PlayerSize/2),
		},
		Config: cfg,
	}}
	app := New(screen, eng, Options{ScreenshotDir: t.TempDir()})
	return app, eng, screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func special(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestHeldKeysDecay(t *testing.T) {
	app, _, _ := newTestApp(t, game.StatusPlaying)
	t0 := time.Unix(1000, 0)
	app.now = func() time.Time { return t0 }

	app.HandleEvent(key('w'))
	app.HandleEvent(special(tcell.KeyRight))

	in := app.input(t0.Add(100 * time.Millisecond))
	if !in.Up || !in.Right || in.Down || in.Left {
		t.Errorf("input at +100ms = %+v, want up+right", in)
	}
	if in := app.input(t0.Add(200 * time.Millisecond)); in != (game.Input{}) {
		t.Errorf("input at +200ms = %+v, want released", in)
	}
}

func TestFramePushesInput(t *testing.T) {
	app, eng, _ := newTestApp(t, game.StatusPlaying)
	t0 := time.Unix(1000, 0)
	app.now = func() time.Time { return t0 }

	app.HandleEvent(key('a'))
	app.Frame()
	if !eng.input.Left {
		t.Errorf("engine input = %+v, want left", eng.input)
	}
}

func TestMouseShootsAtCell(t *testing.T) {
	app, eng, _ := newTestApp(t, game.StatusPlaying)

	app.HandleEvent(tcell.NewEventMouse(40, 13, tcell.Button1, tcell.ModNone))
	if len(eng.shots) != 1 {
		t.Fatalf("shots = %d, want 1", len(eng.shots))
	}
	// 80 columns over 800px, 24 play rows over 600px
	if got := eng.shots[0]; got.x != 405 || got.y != 312.5 {
		t.Errorf("shot at %+v, want (405, 312.5)", got)
	}

	// HUD row is not part of the viewport
	app.HandleEvent(tcell.NewEventMouse(10, 0, tcell.Button1, tcell.ModNone))
	if len(eng.shots) != 1 {
		t.Error("click on HUD row should not shoot")
	}
}

func TestDirectionalAndNearestShots(t *testing.T) {
	app, eng, _ := newTestApp(t, game.StatusPlaying)
	eng.snap.Monsters = []game.MonsterSnapshot{
		{ID: "far", X: 900, Y: 900},
		{ID: "near", X: 450, Y: 300},
	}

	app.HandleEvent(key('i'))
	app.HandleEvent(key(' '))
	if len(eng.shots) != 2 {
		t.Fatalf("shots = %d, want 2", len(eng.shots))
	}
	if got := eng.shots[0]; got.x != 400 || got.y != 100 {
		t.Errorf("up shot at %+v, want (400, 100)", got)
	}
	// monster center (460,310) shifted by the camera (-10,-10)
	if got := eng.shots[1]; got.x != 450 || got.y != 300 {
		t.Errorf("aimed shot at %+v, want (450, 300)", got)
	}
}

func TestStateKeys(t *testing.T) {
	tests := []struct {
		name   string
		status game.Status
		ev     *tcell.EventKey
		check  func(*fakeEngine) bool
	}{
		{"enter starts", game.StatusStartScreen, special(tcell.KeyEnter), func(e *fakeEngine) bool { return e.starts == 1 }},
		{"r restarts", game.StatusGameOver, key('r'), func(e *fakeEngine) bool { return e.starts == 1 }},
		{"digit answers", game.StatusQuestion, key('3'), func(e *fakeEngine) bool { return len(e.answers) == 1 && e.answers[0] == 2 }},
		{"digit ignored while playing", game.StatusPlaying, key('3'), func(e *fakeEngine) bool { return len(e.answers) == 0 }},
		{"escape skips prompt", game.StatusPromptingUsername, special(tcell.KeyEscape), func(e *fakeEngine) bool { return e.skipped == 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, eng, _ := newTestApp(t, tt.status)
			app.HandleEvent(tt.ev)
			if !tt.check(eng) {
				t.Errorf("unexpected engine state %+v", eng)
			}
		})
	}
}

func TestUsernamePrompt(t *testing.T) {
	app, eng, _ := newTestApp(t, game.StatusPromptingUsername)

	app.HandleEvent(special(tcell.KeyEnter))
	if len(eng.submitted) != 0 {
		t.Fatal("empty name must not be submitted")
	}
	if app.message == "" {
		t.Error("expected validation message")
	}

	for _, r := range "Adamx" {
		app.HandleEvent(key(r))
	}
	app.HandleEvent(special(tcell.KeyBackspace2))
	app.HandleEvent(special(tcell.KeyEnter))
	if len(eng.submitted) != 1 || eng.submitted[0] != "Adam" {
		t.Errorf("submitted = %v, want [Adam]", eng.submitted)
	}

	// Buffer is capped at the max name length
	app.nameBuf = nil
	for i := 0; i < 30; i++ {
		app.HandleEvent(key('z'))
	}
	if len(app.nameBuf) != 20 {
		t.Errorf("buffer length = %d, want 20", len(app.nameBuf))
	}
}

func TestQuitKeys(t *testing.T) {
	app, _, _ := newTestApp(t, game.StatusPlaying)
	app.HandleEvent(key('q'))
	if !app.quit {
		t.Error("q should quit")
	}

	app, _, _ = newTestApp(t, game.StatusPromptingUsername)
	app.HandleEvent(key('q'))
	if app.quit {
		t.Error("q while typing a name is a letter, not quit")
	}
	app.HandleEvent(special(tcell.KeyCtrlC))
	if !app.quit {
		t.Error("ctrl-c should always quit")
	}
}

func TestDrawPlacesEntities(t *testing.T) {
	app, eng, screen := newTestApp(t, game.StatusPlaying)
	eng.snap.Monsters = []game.MonsterSnapshot{
		{ID: "t", Type: "trivia", X: 200, Y: 300},
		{ID: "c", Type: "cause_effect", X: 600, Y: 300, Charging: true},
	}
	app.Frame()

	tests := []struct {
		x, y int
		want rune
	}{
		{40, 13, glyphPlayer},
		{20, 13, glyphTrivia},
		{60, 13, glyphCauseEffect},
	}
	for _, tt := range tests {
		r, _, _, _ := screen.GetContent(tt.x, tt.y)
		if r != tt.want {
			t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, r, tt.want)
		}
	}
	_, _, style, _ := screen.GetContent(60, 13)
	if style != styleCharging {
		t.Error("charging monster should use the charging style")
	}
}

func TestDrawQuestionPanel(t *testing.T) {
	app, eng, screen := newTestApp(t, game.StatusQuestion)
	eng.snap.Question = &game.ActiveQuestion{
		Category: questions.CategoryTrivia,
		Question: questions.Question{
			Text:         "GDP measures what?",
			Choices:      []string{"Output", "Prices", "Debt", "Jobs"},
			CorrectIndex: 0,
		},
	}
	app.Frame()

	found := false
	w, h := screen.Size()
	for y := 0; y < h && !found; y++ {
		row := make([]rune, 0, w)
		for x := 0; x < w; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			row = append(row, r)
		}
		if containsRunes(row, "1) Output") {
			found = true
		}
	}
	if !found {
		t.Error("question choices not drawn")
	}
}

func containsRunes(row []rune, s string) bool {
	want := []rune(s)
outer:
	for i := 0; i+len(want) <= len(row); i++ {
		for j, r := range want {
			if row[i+j] != r {
				continue outer
			}
		}
		return true
	}
	return false
}

func TestScreenshot(t *testing.T) {
	app, _, _ := newTestApp(t, game.StatusPlaying)
	app.opts.Render.Width, app.opts.Render.Height = 80, 60
	app.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	app.HandleEvent(key('p'))
	path := filepath.Join(app.opts.ScreenshotDir, "ecoroam-20260301-120000.png")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
}

func TestCellViewRoundTrip(t *testing.T) {
	for _, c := range []struct{ x, y int }{{0, 1}, {40, 13}, {79, 24}} {
		vx, vy, ok := cellToView(c.x, c.y, 80, 25, 800, 600)
		if !ok {
			t.Fatalf("cell %v rejected", c)
		}
		x, y, ok := viewToCell(vx, vy, 80, 25, 800, 600)
		if !ok || x != c.x || y != c.y {
			t.Errorf("round trip %v -> (%v,%v) -> (%d,%d)", c, vx, vy, x, y)
		}
	}
	if _, _, ok := viewToCell(-1, 10, 80, 25, 800, 600); ok {
		t.Error("offscreen point should be rejected")
	}
	for _, p := range [][2]float64{{math.NaN(), 10}, {10, math.NaN()}, {math.Inf(1), 10}} {
		if _, _, ok := viewToCell(p[0], p[1], 80, 25, 800, 600); ok {
			t.Errorf("point %v should be rejected", p)
		}
	}
}
