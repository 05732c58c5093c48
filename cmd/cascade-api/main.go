// Cascade API — HTTP-сервер для управления workflows, runs и schedules.
//
// API не выполняет workflows в своём процессе: запуск run сводится к
// созданию записи в БД и публикации начального состояния в очередь
// шагов. Выполнение делают диспетчеры.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/Cascade/internal/api"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/telemetry"
)

const shutdownGrace = 10 * time.Second

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_api_http_requests_total",
		Help: "Total HTTP requests handled by cascade_api",
	})
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting cascade-api")

	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// RabbitMQ обязателен: без очереди шагов run не стартует
	mqConn, err := mq.NewConnection(mq.URL(), logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(
		repo.NewWorkflowRepo(pool),
		repo.NewRunRepo(pool),
		repo.NewScheduleRepo(pool),
		mq.NewPublisher(mqConn, logger),
		logger,
	)

	server := &http.Server{
		Addr:              listenAddr(),
		Handler:           buildMux(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// На shutdown даём открытым запросам время дообслужиться.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

func buildMux(handler *api.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)
	return mux
}

func listenAddr() string {
	if v := os.Getenv("API_PORT"); v != "" {
		return ":" + v
	}
	return ":8080"
}
