package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"ecoroam/internal/game"
	"ecoroam/internal/questions"
)

func testSnapshot(status game.Status) *game.Snapshot {
	cfg := game.DefaultConfig()
	player := game.Vec2{X: 400, Y: 300}
	return &game.Snapshot{
		Status: status,
		Player: player,
		Camera: game.Vec2{X: cfg.ViewportWidth/2 - player.X - cfg.PlayerSize/2, Y: cfg.ViewportHeight/2 - player.Y - cfg.PlayerSize/2},
		Monsters: []game.MonsterSnapshot{
			{ID: "m1", Type: "trivia", X: 300, Y: 250},
			{ID: "m2", Type: "cause_effect", X: 500, Y: 350, Charging: true},
		},
		MonsterProjectiles: []game.ProjectileSnapshot{{ID: "p1", X: 420, Y: 280, MonsterType: "trivia"}},
		PlayerProjectiles:  []game.ProjectileSnapshot{{ID: "s1", X: 380, Y: 320}},
		Score:              120,
		TimeSurvived:       12,
		Config:             cfg,
	}
}

func rgbaAt(t *testing.T, snap *game.Snapshot, x, y int) color.RGBA {
	t.Helper()
	img := Frame(snap, Options{})
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestFrameSize(t *testing.T) {
	snap := testSnapshot(game.StatusPlaying)

	img := Frame(snap, Options{})
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("default size = %v, want 800x600", b)
	}

	img = Frame(snap, Options{Width: 400, Height: 300})
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("explicit size = %v, want 400x300", b)
	}
}

func TestPlayerDrawnAtViewportCenter(t *testing.T) {
	snap := testSnapshot(game.StatusPlaying)
	got := rgbaAt(t, snap, 400, 300)
	if got != colorPlayer {
		t.Errorf("center pixel = %v, want player color %v", got, colorPlayer)
	}
}

func TestMonsterColorsByType(t *testing.T) {
	snap := testSnapshot(game.StatusPlaying)
	// m1 top-left (300,250) in world maps to screen by the camera offset
	x := int(300+snap.Camera.X) + 10
	y := int(250+snap.Camera.Y) + 10
	if got := rgbaAt(t, snap, x, y); got != colorTrivia {
		t.Errorf("trivia monster pixel = %v, want %v", got, colorTrivia)
	}

	// Charging highlight ring around m2
	x = int(500+snap.Camera.X) - 2
	y = int(350+snap.Camera.Y) + 10
	if got := rgbaAt(t, snap, x, y); got != colorCharging {
		t.Errorf("charging ring pixel = %v, want %v", got, colorCharging)
	}

	if MonsterColor("cause_effect") != colorCauseEffect {
		t.Error("cause_effect should use its own color")
	}
}

func TestHitFlashTintsFrame(t *testing.T) {
	snap := testSnapshot(game.StatusPlaying)
	plain := rgbaAt(t, snap, 790, 590)
	snap.HitFlash = true
	flashed := rgbaAt(t, snap, 790, 590)
	if flashed.R <= plain.R || flashed.R <= flashed.G || flashed.R <= flashed.B {
		t.Errorf("hit flash should redden the frame: plain %v flashed %v", plain, flashed)
	}
}

func TestOverlaysRender(t *testing.T) {
	q := questions.Question{
		Text:         "What happens to unemployment during a recession?",
		Choices:      []string{"It rises", "It falls", "No change", "It vanishes"},
		CorrectIndex: 0,
	}
	tests := []struct {
		name string
		snap func() *game.Snapshot
	}{
		{"start", func() *game.Snapshot { return testSnapshot(game.StatusStartScreen) }},
		{"question", func() *game.Snapshot {
			s := testSnapshot(game.StatusQuestion)
			s.Question = &game.ActiveQuestion{MonsterID: "m1", Category: questions.CategoryCauseEffect, Question: q}
			return s
		}},
		{"prompt", func() *game.Snapshot { return testSnapshot(game.StatusPromptingUsername) }},
		{"game over", func() *game.Snapshot {
			s := testSnapshot(game.StatusGameOver)
			s.GameOver = &game.GameOverData{
				Score: 120, TimeSurvivedSeconds: 12, Rank: 3,
				FailedQuestion: &game.FailedQuestion{QuestionText: q.Text, CorrectAnswerText: "It rises", ExplanationText: "Firms cut jobs."},
			}
			return s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := tt.snap()
			// Panel darkens the center of the frame compared to plain play
			plain := testSnapshot(game.StatusPlaying)
			plain.Player = game.Vec2{X: -1000, Y: -1000}
			plain.Camera = snap.Camera
			snap.Player = plain.Player
			if rgbaAt(t, snap, 100, 300) == rgbaAt(t, plain, 100, 300) {
				t.Error("expected overlay panel to change the frame")
			}
		})
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("the quick brown fox jumps over the lazy dog", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if len(lines) != 5 {
		t.Errorf("got %d lines (%q), want 5", len(lines), lines)
	}
	if wrap("", 10) != nil {
		t.Error("empty input should give no lines")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := SavePNG(path, testSnapshot(game.StatusPlaying), Options{Width: 160, Height: 120}); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("file is not a PNG")
	}
}
