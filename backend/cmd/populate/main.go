package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/internal/embeddings"
	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/internal/populate"
	"github.com/bbrillhart19/vapor/backend/internal/steam"
	"github.com/bbrillhart19/vapor/backend/pkg/config"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

var opts populate.Options

var rootCmd = &cobra.Command{
	Use:   "populate",
	Short: "Populate the Steam social graph into Neo4j",
	Long: `Crawls the configured primary user's Steam social graph and merges
users, friendships, games, genres, descriptions and description
embeddings into Neo4j. Stages are selected by flags and always run in
their fixed order; with no stage flags it only verifies setup.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().IntVarP(&opts.Hops, "hops", "n", 2, "friend-of-friend depth to crawl")
	rootCmd.Flags().IntVarP(&opts.Limit, "limit", "l", -1, "max records per user/stage, -1 for unlimited")
	rootCmd.Flags().BoolVarP(&opts.Init, "init", "i", false, "set up the graph from the primary user first")
	rootCmd.Flags().BoolVarP(&opts.Delete, "delete", "D", false, "clear the graph and exit")
	rootCmd.Flags().BoolVarP(&opts.Friends, "friends", "f", false, "populate users from friends lists")
	rootCmd.Flags().BoolVarP(&opts.Games, "games", "g", false, "populate owned and recently played games")
	rootCmd.Flags().BoolVarP(&opts.Genres, "genres", "G", false, "populate game genres")
	rootCmd.Flags().BoolVarP(&opts.Descriptions, "descriptions", "d", false, "populate game descriptions")
	rootCmd.Flags().BoolVarP(&opts.Embed, "embed", "e", false, "chunk and embed game descriptions")
	rootCmd.Flags().BoolVar(&opts.TrackVisited, "track-visited", false, "skip users already crawled this run")
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.Get()
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)

	client := steam.FromConfig(cfg)

	var embedder populate.Embedder
	if opts.Embed {
		provider, err := embeddings.FromConfig(cfg)
		if err != nil {
			return err
		}
		if err := provider.Pull(ctx); err != nil {
			return err
		}
		embedder = provider
	}

	populator := populate.New(client, repo, embedder)
	if err := populator.Run(ctx, opts); err != nil {
		return err
	}

	log.Info("Populate finished")
	return nil
}

func main() {
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Get().Fatal("Populate failed", zap.Error(err))
	}
}
