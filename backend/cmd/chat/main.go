package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/internal/adapter"
	"github.com/bbrillhart19/vapor/backend/internal/agent"
	"github.com/bbrillhart19/vapor/backend/internal/embeddings"
	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/internal/tools"
	"github.com/bbrillhart19/vapor/backend/pkg/config"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

func main() {
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer repo.Close(ctx)

	embedder, err := embeddings.FromConfig(cfg)
	if err != nil {
		log.Fatal("Failed to create embedding provider", zap.Error(err))
	}
	if err := embedder.Pull(ctx); err != nil {
		log.Fatal("Embedding model unavailable", zap.Error(err))
	}

	llm := adapter.NewLLMAdapter(cfg.OllamaHost, cfg.OllamaAPIKey, cfg.OllamaLLMModel)
	executor := tools.NewGamesExecutor(repo, embedder)
	chatAgent := agent.New(llm, executor)

	log.Info("Chat session started", zap.String("session", chatAgent.SessionID()))
	fmt.Println("Vapor chat. Type a message, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := chatAgent.HandleMessage(ctx, input)
		if err != nil {
			log.Error("Chat turn failed", zap.Error(err))
			fmt.Println("Something went wrong, try again.")
			continue
		}
		fmt.Println(reply)
	}

	log.Info("Chat session ended", zap.String("session", chatAgent.SessionID()))
}
