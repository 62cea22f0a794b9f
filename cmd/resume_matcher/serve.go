package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/fetch"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/queue"
	"github.com/jonathan/resume-matcher/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for matching résumés against job descriptions.
History endpoints are enabled when DATABASE_URL is set; async evaluation when AMQP_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var cleanup closers
	defer cleanup.close()

	store, err := openCache(ctx, settings)
	if err != nil {
		return err
	}
	cleanup.add(func() { _ = store.Close() })

	engine, err := buildEngine(ctx, settings, store, &cleanup)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:         settings.Port,
		Engine:       engine,
		Fetcher:      fetch.NewCachedFetcher(store, nil, fetch.DefaultPageCacheTTL),
		RequestQueue: settings.RequestQueue,
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	database, err := openHistory(ctx, settings, false)
	if err != nil {
		return err
	}
	if database != nil {
		cleanup.add(database.Close)
		cfg.History = database
	} else {
		logging.Warn().Msg("DATABASE_URL not set; history endpoints disabled")
	}

	if settings.AMQPURL != "" {
		broker, err := queue.Dial(settings.AMQPURL)
		if err != nil {
			return err
		}
		cleanup.add(func() { _ = broker.Close() })
		if err := broker.DeclareQueue(settings.RequestQueue); err != nil {
			return err
		}
		cfg.Publisher = broker

		objects, err := openObjectStore(ctx, settings)
		if err != nil {
			return fmt.Errorf("failed to connect to object storage: %w", err)
		}
		cfg.Objects = objects
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
