package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"safetyhub/config"
	core "safetyhub/gateway/service/core"
	grpchandler "safetyhub/gateway/service/grpc"
	httphandler "safetyhub/gateway/service/http"
	"safetyhub/internal/messaging/producer"
	"safetyhub/internal/secure"
	"safetyhub/storage/store"
)

// Gateway configuration file path
const defaultConfigPath = "./config/gateway.defaults.yml"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "gateway",
		Short:        "Serve the safety toolkit over HTTP and gRPC",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGatewayConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load gateway configuration: %w", err)
			}
			logger := log.New(os.Stdout, "[GATEWAY] ", log.LstdFlags|log.Lshortfile)
			return run(cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the gateway YAML configuration")
	return cmd
}

func run(cfg *config.GatewayConfig, logger *log.Logger) error {
	logger.Println("Starting safety gateway...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Process-lifetime key, never persisted
	key, err := secure.GenerateKey()
	if err != nil {
		return err
	}
	encryptor, err := secure.NewEncryptor(secure.Config{
		Algorithm: secure.Algorithm(cfg.Crypto.Algorithm),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize encryptor: %w", err)
	}
	logger.Printf("Generated ephemeral %s key; tokens will not survive a restart", encryptor.Algorithm())

	// 2. Log store
	logger.Printf("Initializing %s log store...", cfg.LogStore.Driver)
	if cfg.LogStore.Driver == config.DriverPostgres {
		cfg.LogStore.Database.LogConfiguration()
	}
	logStore, err := store.Open(ctx, cfg.LogStore, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize log store: %w", err)
	}
	defer logStore.Close()

	// 3. Optional event stream
	opts := core.Options{
		BatchSize:          cfg.BatchProcessor.BatchSize,
		BatchTimeout:       cfg.BatchProcessor.BatchTimeout,
		FlushChannelBuffer: cfg.BatchProcessor.FlushChannelBuffer,
	}
	if cfg.KafkaProducer.Enabled() {
		logger.Println("Initializing Kafka producer...")
		kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaProducer, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Kafka producer: %w", err)
		}
		breaker := producer.NewBreakerProducer(kafkaProducer, cfg.KafkaProducer.BreakerFailures, cfg.KafkaProducer.BreakerCooldown, logger)
		defer breaker.Close()
		opts.Producer = breaker
	} else {
		logger.Println("kafka_producer.brokers not configured, saved logs will not be published.")
	}

	// 4. Core service and transports
	coreService := core.NewService(logStore, encryptor, logger, opts)
	defer coreService.Close()
	safetyHandler := httphandler.NewSafetyHandler(coreService, logger, cfg.HttpServer.MaxBodyBytes)
	safetyGrpc := grpchandler.NewServer(coreService, logger)

	var wg sync.WaitGroup
	serveErr := make(chan error, 2)

	var httpServer *http.Server
	if cfg.HttpListenAddr != "" {
		httpServer = &http.Server{
			Addr:           cfg.HttpListenAddr,
			Handler:        safetyHandler.Handler(cfg.Cors),
			ReadTimeout:    cfg.HttpServer.ReadTimeout,
			WriteTimeout:   cfg.HttpServer.WriteTimeout,
			IdleTimeout:    cfg.HttpServer.IdleTimeout,
			MaxHeaderBytes: cfg.HttpServer.MaxHeaderBytes,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Printf("HTTP server listening on %s", cfg.HttpListenAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("HTTP server failed: %w", err)
				return
			}
			logger.Println("HTTP server stopped listening.")
		}()
	} else {
		logger.Println("http_listen_addr not configured, skipping HTTP server startup.")
	}

	var grpcServer *grpc.Server
	if cfg.GrpcListenAddr != "" {
		lis, err := net.Listen("tcp", cfg.GrpcListenAddr)
		if err != nil {
			return fmt.Errorf("unable to listen on gRPC port %s: %w", cfg.GrpcListenAddr, err)
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(grpchandler.LoggingInterceptor(logger)))
		safetyGrpc.Register(grpcServer)

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Printf("gRPC server listening on %s", cfg.GrpcListenAddr)
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serveErr <- fmt.Errorf("gRPC server failed: %w", err)
				return
			}
			logger.Println("gRPC server stopped listening.")
		}()
	} else {
		logger.Println("grpc_listen_addr not configured, skipping gRPC server startup.")
	}

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case sig := <-quit:
		logger.Printf("Received shutdown signal: %s, starting graceful shutdown...", sig)
	case runErr = <-serveErr:
		logger.Printf("Server error: %v, shutting down...", runErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP server shutdown failed: %v", err)
		}
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	wg.Wait()
	logger.Println("All servers stopped. Gateway shutdown.")
	return runErr
}
