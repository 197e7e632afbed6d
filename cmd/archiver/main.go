package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"safetyhub/config"
	"safetyhub/internal/messaging/consumer"
	worker "safetyhub/processing"
	"safetyhub/storage/store"
)

const defaultConfigPath = "./config/archiver.defaults.yml"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "archiver",
		Short:        "Copy published log events into the archive store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadArchiverConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load archiver configuration: %w", err)
			}
			logger := log.New(os.Stdout, "[ARCHIVER] ", log.LstdFlags|log.Lshortfile)
			return run(cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the archiver YAML configuration")
	return cmd
}

func run(cfg *config.ArchiverConfig, logger *log.Logger) error {
	logger.Println("Starting log archiver...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Printf("Initializing %s archive store...", cfg.LogStore.Driver)
	archive, err := store.Open(ctx, cfg.LogStore, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize archive store: %w", err)
	}
	defer archive.Close()

	var consumers []consumer.Consumer
	if cfg.KafkaConsumer.Mock() {
		logger.Println("Using mock consumer...")
		consumers = append(consumers, consumer.NewMockConsumer(logger))
	} else {
		logger.Printf("Initializing %d Kafka consumers...", cfg.KafkaConsumer.Count)
		for i := 0; i < cfg.KafkaConsumer.Count; i++ {
			c, err := consumer.NewKafkaConsumer(cfg.KafkaConsumer, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize Kafka consumer %d: %w", i, err)
			}
			consumers = append(consumers, c)
		}
	}

	var wg sync.WaitGroup
	for i, c := range consumers {
		w := worker.New(cfg.Worker, logger, archive, c)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			logger.Printf("Consumer %d: worker pool running", idx)
			w.Run(ctx)
		}(i + 1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Printf("Received shutdown signal: %s, stopping workers...", sig)
	cancel()
	wg.Wait()

	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Printf("Consumer close failed: %v", err)
		}
	}
	logger.Println("Archiver shutdown.")
	return nil
}
