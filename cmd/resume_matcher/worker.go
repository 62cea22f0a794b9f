package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/queue"
)

var (
	workerConcurrency int
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume evaluation requests from RabbitMQ",
	Long: `Consume evaluation requests from the request queue, evaluate them and publish results to the result
queue. Résumé files referenced by object key are read from MinIO; results are saved to history when
requested and DATABASE_URL is set.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 4, "Number of requests processed at once")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if settings.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required for the worker")
	}
	if workerConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	broker, err := queue.Dial(settings.AMQPURL)
	if err != nil {
		return err
	}
	cleanup.add(func() { _ = broker.Close() })
	for _, name := range []string{settings.RequestQueue, settings.ResultQueue} {
		if err := broker.DeclareQueue(name); err != nil {
			return err
		}
	}

	var opts []queue.ProcessorOption
	objects, err := openObjectStore(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}
	if objects != nil {
		opts = append(opts, queue.WithObjectStore(objects))
	}

	database, err := openHistory(ctx, settings, false)
	if err != nil {
		return err
	}
	if database != nil {
		cleanup.add(database.Close)
		opts = append(opts, queue.WithHistory(database))
	}

	processor := queue.NewProcessor(engine, broker, settings.ResultQueue, opts...)

	logging.Info().
		Str("request_queue", settings.RequestQueue).
		Str("result_queue", settings.ResultQueue).
		Int("concurrency", workerConcurrency).
		Bool("object_storage", objects != nil).
		Bool("history", database != nil).
		Msg("worker started")

	return broker.Consume(ctx, settings.RequestQueue, workerConcurrency, processor.Handle)
}
