package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"ecoroam/internal/game"
)

var (
	styleDefault     = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHUD         = styleDefault.Foreground(tcell.ColorLightGreen).Bold(true)
	styleEdge        = styleDefault.Foreground(tcell.ColorDarkGreen)
	stylePlayer      = styleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true)
	styleTrivia      = styleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleCauseEffect = styleDefault.Foreground(tcell.ColorMediumPurple).Bold(true)
	styleCharging    = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack).Bold(true)
	stylePlayerShot  = styleDefault.Foreground(tcell.ColorWhite)
	styleFlash       = tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite)
	stylePanel       = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	stylePanelTitle  = stylePanel.Bold(true).Foreground(tcell.ColorYellow)
	styleAnswer      = stylePanel.Foreground(tcell.ColorLightGreen)
)

const (
	glyphPlayer      = '@'
	glyphTrivia      = 'T'
	glyphCauseEffect = 'C'
	glyphMonsterShot = '*'
	glyphPlayerShot  = '.'
	glyphEdge        = '#'
)

func (a *App) draw(snap *game.Snapshot) {
	w, h := a.screen.Size()
	bg := styleDefault
	if snap.HitFlash {
		bg = styleFlash
	}
	a.screen.Fill(' ', bg)

	a.drawWorld(snap, w, h, bg)
	a.drawHUD(snap, w)

	switch snap.Status {
	case game.StatusStartScreen:
		a.drawPanel(w, h, "ECOROAM", []line{
			{text: "Survive the monsters of the economy."},
			{text: "Get hit and answer a question to keep going."},
			{},
			{text: "Move: WASD / arrows   Shoot: click, IJKL, space"},
			{text: "Screenshot: P   Quit: Q"},
			{},
			{text: "Press ENTER to start"},
		})
	case game.StatusQuestion:
		if q := snap.Question; q != nil {
			title := strings.ToUpper(strings.ReplaceAll(q.Category.String(), "_", "/"))
			lines := wrapLines(q.Question.Text, 56)
			lines = append(lines, line{})
			for i, c := range q.Question.Choices {
				lines = append(lines, line{text: fmt.Sprintf("%d) %s", i+1, c)})
			}
			a.drawPanel(w, h, title, lines)
		}
	case game.StatusPromptingUsername:
		lines := []line{
			{text: fmt.Sprintf("Score: %d", snap.Score)},
			{},
			{text: "Name: " + string(a.nameBuf) + "_"},
			{},
			{text: "ENTER submit   ESC skip"},
		}
		if a.message != "" {
			lines = append(lines, line{}, line{text: a.message, style: styleTrivia.Background(tcell.ColorNavy)})
		}
		a.drawPanel(w, h, "NEW SCORE", lines)
	case game.StatusGameOver:
		if g := snap.GameOver; g != nil {
			a.drawPanel(w, h, "GAME OVER", gameOverLines(g))
		}
	}
}

func gameOverLines(g *game.GameOverData) []line {
	lines := []line{
		{text: fmt.Sprintf("Score: %d   Time: %ds   Kills: %d", g.Score, g.TimeSurvivedSeconds, g.MonstersKilled)},
	}
	switch {
	case g.Rank > 0:
		lines = append(lines, line{text: fmt.Sprintf("%s ranked #%d", g.PlayerName, g.Rank)})
	case g.RankPending:
		lines = append(lines, line{text: "Submitting score..."})
	}
	if f := g.FailedQuestion; f != nil {
		lines = append(lines, line{})
		lines = append(lines, wrapLines(f.QuestionText, 56)...)
		lines = append(lines, line{text: "Answer: " + f.CorrectAnswerText, style: styleAnswer})
		if f.ExplanationText != "" {
			lines = append(lines, wrapLines(f.ExplanationText, 56)...)
		}
	}
	return append(lines, line{}, line{text: "R play again   Q quit"})
}

func (a *App) drawWorld(snap *game.Snapshot, w, h int, bg tcell.Style) {
	cfg := snap.Config
	vw, vh := cfg.ViewportWidth, cfg.ViewportHeight

	put := func(wx, wy float64, r rune, style tcell.Style) {
		if x, y, ok := viewToCell(wx+snap.Camera.X, wy+snap.Camera.Y, w, h, vw, vh); ok {
			a.screen.SetContent(x, y, r, nil, style)
		}
	}

	// World edges that fall inside the viewport
	edge := styleEdge.Background(background(bg))
	for x := 0; x < w; x++ {
		for _, wy := range []float64{0, cfg.WorldHeight} {
			wx := (float64(x)+0.5)*vw/float64(w) - snap.Camera.X
			if wx >= 0 && wx <= cfg.WorldWidth {
				put(wx, wy, glyphEdge, edge)
			}
		}
	}
	for y := 1; y < h; y++ {
		for _, wx := range []float64{0, cfg.WorldWidth} {
			wy := (float64(y-1)+0.5)*vh/float64(h-1) - snap.Camera.Y
			if wy >= 0 && wy <= cfg.WorldHeight {
				put(wx, wy, glyphEdge, edge)
			}
		}
	}

	for _, p := range snap.PlayerProjectiles {
		put(p.X, p.Y, glyphPlayerShot, stylePlayerShot.Background(background(bg)))
	}
	for _, p := range snap.MonsterProjectiles {
		put(p.X, p.Y, glyphMonsterShot, monsterStyle(p.MonsterType).Background(background(bg)))
	}
	for _, m := range snap.Monsters {
		style := monsterStyle(m.Type).Background(background(bg))
		if m.Charging {
			style = styleCharging
		}
		put(m.X+cfg.MonsterSize/2, m.Y+cfg.MonsterSize/2, monsterGlyph(m.Type), style)
	}
	put(snap.Player.X+cfg.PlayerSize/2, snap.Player.Y+cfg.PlayerSize/2, glyphPlayer, stylePlayer.Background(background(bg)))
}

func background(s tcell.Style) tcell.Color {
	_, bg, _ := s.Decompose()
	return bg
}

func monsterGlyph(t string) rune {
	if t == "cause_effect" {
		return glyphCauseEffect
	}
	return glyphTrivia
}

func monsterStyle(t string) tcell.Style {
	if t == "cause_effect" {
		return styleCauseEffect
	}
	return styleTrivia
}

func (a *App) drawHUD(snap *game.Snapshot, w int) {
	hud := fmt.Sprintf(" Score %d  Time %ds  Kills %d  Monsters %d", snap.Score, snap.TimeSurvived, snap.MonstersKilled, len(snap.Monsters))
	if snap.Wave > 0 {
		hud += fmt.Sprintf("  Wave %d", snap.Wave)
	}
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, 0, ' ', nil, styleHUD)
	}
	a.drawText(0, 0, hud, styleHUD)
	if a.message != "" && snap.Status != game.StatusPromptingUsername {
		a.drawText(w-len([]rune(a.message))-1, 0, a.message, styleHUD)
	}
}

type line struct {
	text  string
	style tcell.Style
}

// drawPanel draws a centered box with a title and body lines
func (a *App) drawPanel(w, h int, title string, lines []line) {
	inner := len([]rune(title))
	for _, l := range lines {
		if n := len([]rune(l.text)); n > inner {
			inner = n
		}
	}
	boxW := inner + 4
	if boxW > w {
		boxW = w
	}
	boxH := len(lines) + 4
	x0 := (w - boxW) / 2
	y0 := (h - boxH) / 2
	if y0 < 1 {
		y0 = 1
	}

	for y := y0; y < y0+boxH && y < h; y++ {
		for x := x0; x < x0+boxW; x++ {
			a.screen.SetContent(x, y, ' ', nil, stylePanel)
		}
	}
	a.drawText(x0+(boxW-len([]rune(title)))/2, y0+1, title, stylePanelTitle)
	for i, l := range lines {
		style := l.style
		if style == (tcell.Style{}) {
			style = stylePanel
		}
		a.drawText(x0+2, y0+3+i, l.text, style)
	}
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func wrapLines(s string, width int) []line {
	var out []line
	cur := ""
	for _, word := range strings.Fields(s) {
		if cur != "" && len([]rune(cur))+1+len([]rune(word)) > width {
			out = append(out, line{text: cur})
			cur = ""
		}
		if cur != "" {
			cur += " "
		}
		cur += word
	}
	if cur != "" {
		out = append(out, line{text: cur})
	}
	return out
}
