package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"ecoroam/internal/api"
	"ecoroam/internal/config"
	"ecoroam/internal/game"
	"ecoroam/internal/identity"
	"ecoroam/internal/leaderboard"
	"ecoroam/internal/questions"
	"ecoroam/internal/render"
	"ecoroam/internal/tui"
)

func main() {
	envErr := godotenv.Load(".env")

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// The terminal belongs to the UI from here on
	if path := appConfig.Client.LogFile; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("❌ Cannot open log file %s: %v", path, err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	log.Println("🌱 ================================")
	log.Println("🌱  ECOROAM")
	log.Println("🌱 ================================")
	if envErr != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	source, err := questionSource(appConfig.Questions)
	if err != nil {
		log.Fatalf("❌ Question source: %v", err)
	}
	manager := questions.NewManager(questions.NewTopicGenerator(source), questions.ManagerConfig{
		Capacity: appConfig.Questions.Capacity,
		LowWater: appConfig.Questions.LowWater,
		Shuffle:  true,
	})
	manager.OnFetch = func(c questions.Category, err error) {
		api.RecordQuestionFetch(c.String(), err)
		api.UpdateQuestionQueue(c.String(), manager.Len(c))
		if err != nil {
			log.Printf("⚠️ %s question generation failed: %v", c, err)
		}
	}
	defer manager.Close()

	engine, err := game.NewEngine(game.EngineOptions{
		Config:    appConfig.Game,
		Questions: manager,
		Identity:  identity.NewStore(appConfig.Client.IdentityFile),
		Reporter:  scoreReporter(appConfig.Leaderboard),
	})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	engine.OnTick = func(d time.Duration) {
		api.RecordTick(d)
		snap := engine.Snapshot()
		api.UpdateWorld(len(snap.Monsters), len(snap.MonsterProjectiles), len(snap.PlayerProjectiles))
		el := engine.EventLog()
		api.UpdateEventLogStats(el.GetTotalCount(), el.GetDroppedCount())
	}
	engine.OnStatusChange = func(from, to game.Status) {
		log.Printf("🔀 %s -> %s", from, to)
		if to == game.StatusGameOver {
			api.RecordGameOver(gameOverReason(engine.Snapshot().GameOver))
		}
	}

	if path := appConfig.Observability.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", path)
		}
	}
	if !appConfig.Observability.DebugDisabled {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("❌ Cannot create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("❌ Cannot init screen: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager.Prefill()
	engine.Start()
	log.Println("✅ Game engine started")

	app := tui.New(screen, engine, tui.Options{
		ScreenshotDir: os.Getenv("SCREENSHOT_DIR"),
		Render: render.Options{
			FontPath: os.Getenv("FONT_PATH"),
			Grid:     true,
		},
	})
	runErr := app.Run(ctx)
	screen.Fini()

	log.Println("🛑 Shutting down...")
	engine.Stop()
	engine.Wait()
	engine.StopEventLog()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Printf("❌ %v", runErr)
	}
	log.Println("👋 Goodbye!")
}

func questionSource(cfg config.QuestionsConfig) (questions.Source, error) {
	switch {
	case cfg.APIURL != "":
		log.Printf("🤖 Questions from %s", cfg.APIURL)
		return questions.NewHTTPSource(questions.HTTPSourceConfig{
			BaseURL: cfg.APIURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}), nil
	case cfg.BankFile != "":
		log.Printf("📚 Questions from bank %s", cfg.BankFile)
		return questions.LoadBankFile(cfg.BankFile)
	default:
		log.Println("📚 Questions from the built-in bank")
		return questions.NewDefaultBankSource()
	}
}

func scoreReporter(cfg config.LeaderboardConfig) game.ScoreReporter {
	if cfg.URL != "" {
		log.Printf("🏆 Leaderboard service: %s", cfg.URL)
		return leaderboard.NewClient(cfg.URL, cfg.Timeout)
	}
	log.Printf("🏆 Local leaderboard: %s", cfg.File)
	return leaderboard.NewBoard(leaderboard.NewFileStore(cfg.File), cfg.MaxEntries)
}

func gameOverReason(g *game.GameOverData) string {
	switch {
	case g == nil || g.FailedQuestion == nil:
		return "unknown"
	case *g.FailedQuestion == game.FailedGeneration:
		return "generation_error"
	case *g.FailedQuestion == game.FailedNoQuestion:
		return "no_question"
	default:
		return "wrong_answer"
	}
}
