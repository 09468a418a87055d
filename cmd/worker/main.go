package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/migrascope/internal/metrics"
	"github.com/OFFIS-RIT/migrascope/internal/queue"
	"github.com/OFFIS-RIT/migrascope/internal/storage"
	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/leaselock"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/logger/console"
	"github.com/OFFIS-RIT/migrascope/pkg/report"
	pgxstore "github.com/OFFIS-RIT/migrascope/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// Init s3 client
	client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	db := pgxstore.NewStore(pgConn)

	source, err := storage.ReferenceSource(ctx, util.GetEnvString("REFERENCE_SOURCE", "postgres"), db, client)
	if err != nil {
		logger.Fatal("Failed to set up reference source", "err", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	if addr := util.GetEnv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("Serving worker metrics", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("Metrics endpoint stopped", "err", err)
			}
		}()
	}

	handler := &queue.ReportHandler{
		Snapshots: db,
		Reports:   db,
		Artifacts: storage.NewArtifacts(client, util.GetEnv("AWS_BUCKET")),
		Locks:     leaselock.New(pgConn),
		Engine: report.NewEngine(
			report.WithSource(source),
			report.WithObserver(func(s report.Stats) {
				m.ObserveGeneration("worker", s.Objects, s.Cycles, s.Duration)
			}),
		),
		Metrics: m,
		LockOptions: leaselock.Options{
			TTL: util.GetEnvSeconds("LOCK_TTL_SECONDS", 5*time.Minute),
		},
		UploadRetries: 3,
		UploadBackoff: util.Backoff{Initial: time.Second, Max: 10 * time.Second},
	}

	// Init rabbitmq
	conn, err := queue.Init(util.GetEnv("AMQP_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.ReportQueue}); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	// One report at a time per worker.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.Consume(
		queue.ReportQueue,
		queue.ReportQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ReportQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.ReportQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.ReportQueue)
				return
			}

			start := time.Now()
			logger.Info("[Worker] Received message", "queue", queue.ReportQueue)

			if err := handler.Process(ctx, msg.Body); err != nil {
				logger.Error("[Worker] Error processing message", "queue", queue.ReportQueue, "err", err)
				queue.HandleProcessingError(ctx, ch, msg, queue.ReportQueue, queue.MaxRetries, err)
				continue
			}
			if err := msg.Ack(false); err != nil {
				logger.Error("[Worker] Failed to ack message", "err", err)
			}
			logger.Info("[Worker] Message processed successfully", "duration", time.Since(start))
		}
	}
}
