// Package render draws game snapshots to images. Frame is a pure function of
// the snapshot, so the same code serves screenshots, the game-over card and
// tests.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"

	"ecoroam/internal/game"
)

// Options controls frame rendering
type Options struct {
	Width    int     // output size; zero uses the snapshot viewport
	Height   int
	FontPath string  // TrueType font for text; empty uses the built-in face
	FontSize float64 // points, used with FontPath
	Grid     bool    // draw world grid lines
}

var (
	colorBackground  = color.RGBA{18, 32, 24, 255}
	colorGrid        = color.RGBA{34, 56, 42, 255}
	colorWorldEdge   = color.RGBA{90, 140, 100, 255}
	colorPlayer      = color.RGBA{70, 170, 255, 255}
	colorPlayerShot  = color.RGBA{255, 255, 255, 255}
	colorTrivia      = color.RGBA{230, 80, 80, 255}
	colorCauseEffect = color.RGBA{175, 95, 230, 255}
	colorCharging    = color.RGBA{255, 220, 60, 255}
	colorHUD         = color.RGBA{235, 245, 235, 255}
	colorOverlay     = color.RGBA{0, 0, 0, 170}
	colorHitFlash    = color.NRGBA{255, 40, 40, 90}
	colorCorrectText = color.RGBA{120, 230, 120, 255}
)

// MonsterColor returns the fill used for a monster type name
func MonsterColor(monsterType string) color.RGBA {
	if monsterType == "cause_effect" {
		return colorCauseEffect
	}
	return colorTrivia
}

// Frame renders one snapshot.
func Frame(snap *game.Snapshot, opts Options) image.Image {
	cfg := snap.Config
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = int(cfg.ViewportWidth), int(cfg.ViewportHeight)
	}
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}

	dc := gg.NewContext(w, h)
	if opts.FontPath != "" {
		size := opts.FontSize
		if size <= 0 {
			size = 14
		}
		// Falls back to the built-in face on failure
		_ = dc.LoadFontFace(opts.FontPath, size)
	}

	dc.SetColor(colorBackground)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	// Scale viewport to output, then camera offset into world space
	sx := float64(w) / nonZero(cfg.ViewportWidth, float64(w))
	sy := float64(h) / nonZero(cfg.ViewportHeight, float64(h))
	dc.Push()
	dc.Scale(sx, sy)
	dc.Translate(snap.Camera.X, snap.Camera.Y)
	drawWorld(dc, snap, opts.Grid)
	dc.Pop()

	if snap.HitFlash {
		dc.SetColor(colorHitFlash)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	}

	drawHUD(dc, snap)

	switch snap.Status {
	case game.StatusStartScreen:
		drawPanel(dc, w, h, []string{
			"ECOROAM",
			"",
			"Survive the monsters of the economy.",
			"Get hit and answer a question to keep going.",
			"",
			"Press ENTER to start",
		}, nil)
	case game.StatusQuestion:
		if snap.Question != nil {
			drawQuestion(dc, w, h, snap.Question)
		}
	case game.StatusPromptingUsername:
		drawPanel(dc, w, h, []string{
			"NEW SCORE",
			fmt.Sprintf("Score: %d", snap.Score),
			"",
			"Enter a name for the leaderboard",
		}, nil)
	case game.StatusGameOver:
		if snap.GameOver != nil {
			drawGameOver(dc, w, h, snap.GameOver)
		}
	}

	return dc.Image()
}

func drawWorld(dc *gg.Context, snap *game.Snapshot, grid bool) {
	cfg := snap.Config

	if grid {
		dc.SetColor(colorGrid)
		dc.SetLineWidth(1)
		for x := 0.0; x <= cfg.WorldWidth; x += 100 {
			dc.DrawLine(x, 0, x, cfg.WorldHeight)
			dc.Stroke()
		}
		for y := 0.0; y <= cfg.WorldHeight; y += 100 {
			dc.DrawLine(0, y, cfg.WorldWidth, y)
			dc.Stroke()
		}
	}

	dc.SetColor(colorWorldEdge)
	dc.SetLineWidth(3)
	dc.DrawRectangle(0, 0, cfg.WorldWidth, cfg.WorldHeight)
	dc.Stroke()

	for _, m := range snap.Monsters {
		if m.Charging {
			dc.SetColor(colorCharging)
			dc.DrawRectangle(m.X-3, m.Y-3, cfg.MonsterSize+6, cfg.MonsterSize+6)
			dc.Fill()
		}
		dc.SetColor(MonsterColor(m.Type))
		dc.DrawRectangle(m.X, m.Y, cfg.MonsterSize, cfg.MonsterSize)
		dc.Fill()
	}

	for _, p := range snap.MonsterProjectiles {
		dc.SetColor(MonsterColor(p.MonsterType))
		dc.DrawCircle(p.X, p.Y, cfg.ProjectileSize/2)
		dc.Fill()
	}

	dc.SetColor(colorPlayerShot)
	for _, p := range snap.PlayerProjectiles {
		dc.DrawCircle(p.X, p.Y, cfg.PlayerProjectileSize/2)
		dc.Fill()
	}

	dc.SetColor(colorPlayer)
	dc.DrawRectangle(snap.Player.X, snap.Player.Y, cfg.PlayerSize, cfg.PlayerSize)
	dc.Fill()
}

func drawHUD(dc *gg.Context, snap *game.Snapshot) {
	dc.SetColor(colorHUD)
	dc.DrawString(fmt.Sprintf("Score: %d", snap.Score), 10, 20)
	dc.DrawString(fmt.Sprintf("Time: %ds", snap.TimeSurvived), 10, 38)
	dc.DrawString(fmt.Sprintf("Kills: %d", snap.MonstersKilled), 10, 56)
	if snap.Wave > 0 {
		dc.DrawString(fmt.Sprintf("Wave: %d", snap.Wave), 10, 74)
	}
}

func drawQuestion(dc *gg.Context, w, h int, q *game.ActiveQuestion) {
	lines := []string{strings.ToUpper(strings.ReplaceAll(q.Category.String(), "_", "/")), ""}
	lines = append(lines, wrap(q.Question.Text, 60)...)
	lines = append(lines, "")
	for i, c := range q.Question.Choices {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, c))
	}
	drawPanel(dc, w, h, lines, nil)
}

func drawGameOver(dc *gg.Context, w, h int, g *game.GameOverData) {
	lines := []string{
		"GAME OVER",
		"",
		fmt.Sprintf("Score: %d   Time: %ds   Kills: %d", g.Score, g.TimeSurvivedSeconds, g.MonstersKilled),
	}
	switch {
	case g.Rank > 0:
		lines = append(lines, fmt.Sprintf("Leaderboard rank: #%d", g.Rank))
	case g.RankPending:
		lines = append(lines, "Submitting score...")
	}
	highlight := map[int]color.Color{}
	if f := g.FailedQuestion; f != nil {
		lines = append(lines, "")
		lines = append(lines, wrap(f.QuestionText, 60)...)
		highlight[len(lines)] = colorCorrectText
		lines = append(lines, "Answer: "+f.CorrectAnswerText)
		if f.ExplanationText != "" {
			lines = append(lines, wrap(f.ExplanationText, 60)...)
		}
	}
	lines = append(lines, "", "Press R to play again")
	drawPanel(dc, w, h, lines, highlight)
}

// drawPanel draws centered text lines over a translucent box
func drawPanel(dc *gg.Context, w, h int, lines []string, colors map[int]color.Color) {
	lineH := dc.FontHeight() * 1.6
	boxW := float64(w) * 0.8
	boxH := lineH*float64(len(lines)) + 40
	x := (float64(w) - boxW) / 2
	y := (float64(h) - boxH) / 2

	dc.SetColor(colorOverlay)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Fill()

	for i, line := range lines {
		c, ok := colors[i]
		if !ok {
			c = colorHUD
		}
		dc.SetColor(c)
		dc.DrawStringAnchored(line, float64(w)/2, y+20+lineH*(float64(i)+0.5), 0.5, 0.5)
	}
}

// wrap breaks s into lines of at most width runes on word boundaries
func wrap(s string, width int) []string {
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		wr := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(wr) > width {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, wr...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

func nonZero(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

// SavePNG renders the snapshot and writes it to path.
func SavePNG(path string, snap *game.Snapshot, opts Options) error {
	if err := gg.SavePNG(path, Frame(snap, opts)); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}
