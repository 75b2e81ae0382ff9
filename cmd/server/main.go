package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ecoroam/internal/api"
	"ecoroam/internal/audio"
	"ecoroam/internal/config"
	"ecoroam/internal/leaderboard"
	"ecoroam/internal/questions"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🏆 ================================")
	log.Println("🏆  ECOROAM - SERVICES")
	log.Println("🏆  Leaderboard + Question Flows")
	log.Println("🏆 ================================")

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	serverCfg := appConfig.Server
	lbCfg := appConfig.Leaderboard

	board := leaderboard.NewBoard(leaderboard.NewFileStore(lbCfg.File), lbCfg.MaxEntries)
	log.Printf("🏆 Leaderboard file: %s (max %d entries)", lbCfg.File, board.MaxEntries())

	var bank *questions.BankSource
	if path := appConfig.Questions.BankFile; path != "" {
		bank, err = questions.LoadBankFile(path)
	} else {
		bank, err = questions.NewDefaultBankSource()
	}
	if err != nil {
		log.Printf("⚠️ Question flows disabled: %v", err)
	}

	music := audio.NewMusic(serverCfg.MusicPath)
	if music != nil {
		log.Printf("🎵 Music: %s", serverCfg.MusicPath)
	}

	srvCfg := api.ServerConfig{
		Board:       board,
		Music:       music,
		CORSOrigins: serverCfg.CORSOrigins,
	}
	if bank != nil {
		srvCfg.Questions = bank
	}
	server := api.NewServer(srvCfg)

	if !appConfig.Observability.DebugDisabled {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	addr := ":" + strconv.Itoa(serverCfg.Port)
	go func() {
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("")
	log.Println("📋 Point the game at this server:")
	log.Printf("   LEADERBOARD_URL=http://localhost%s/api", addr)
	if bank != nil {
		log.Printf("   QUESTION_API_URL=http://localhost%s/api/flows", addr)
	}
	log.Println("")

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Printf("⚠️ Shutdown: %v", err)
	}
	log.Println("👋 Goodbye!")
}
