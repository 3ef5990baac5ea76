package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	config "taskmate/app/configs"
	"taskmate/app/core/interaction/gateway"
	"taskmate/app/core/interaction/ws"
	"taskmate/app/core/orchestrator/agent"
	"taskmate/app/core/orchestrator/db"
	"taskmate/app/core/orchestrator/task"
	"taskmate/app/core/orchestrator/tools"
	"taskmate/app/pkg/logger"
)

func main() {
	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("TaskMate Starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	apiKey := config.APIKey()
	if apiKey == "" {
		logger.Error("OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	database, err := db.NewSQLiteDB("output/db")
	if err != nil {
		logger.Error("Failed to initialize DB: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("Database initialized successfully")

	taskStore := task.NewStore(database)
	registry := tools.NewRegistry()
	tools.RegisterTaskTools(registry, taskStore, cfg.Task.SimilarityThreshold)

	brain := agent.New(cfg.Agent.Name, apiKey, cfg.LLM, cfg.Task, registry)

	connRegistry := ws.NewRegistry()
	coordinator := gateway.NewCoordinator(brain, taskStore, connRegistry)

	tracer, err := gateway.NewTraceRecorder("output/traces")
	if err != nil {
		logger.Error("Failed to initialize trace recorder: %v", err)
		os.Exit(1)
	}
	coordinator.SetTraceRecorder(tracer)

	server := ws.NewServer(cfg.Server.Port, cfg.Server.AllowedOrigins, coordinator.HandleConnection)
	server.SetStatusProvider(coordinator.Status)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(ctx); err != nil {
			logger.Error("Server crashed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Info("TaskMate is ready to serve.")
	fmt.Printf("- Chat:   ws://localhost:%d/ws/chat\n", cfg.Server.Port)
	fmt.Printf("- Health: http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("- Status: http://localhost:%d/api/status\n", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. TaskMate Shutting Down...", sig)
	cancel()
	connRegistry.CloseAll()
}
