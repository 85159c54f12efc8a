package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	cartapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/application/catalog"
	orderapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/order"
	paymentapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/application/reporting"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/config"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/catalogfile"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/logging"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/sequence"
	httppresentation "github.com/Zhima-Mochi/minishop-retail/app/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-retail/app/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		LogFile: cfg.LogFile,
		Level:   cfg.LogLevel,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	if err := run(cfg, baseLogger, systemLogger); err != nil {
		systemLogger.Error("minishop_exit", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, baseLogger, systemLogger *zap.Logger) error {
	oteltrace.InstallPropagator()
	counters, histograms, gauges := prometrics.Instruments(prometrics.New("", "", nil))
	tel := infraobs.New(
		oteltrace.New(cfg.ServiceName),
		zaplogger.New(baseLogger),
		counters, histograms, gauges,
	)

	products, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}
	store, err := memory.NewInventoryStore(products...)
	if err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	orders := memory.NewOrderLedger(sequence.New(cfg.OrderIDStart))
	payments := memory.NewPaymentLedger(sequence.New(cfg.PaymentIDBase))

	// In-memory event bus; services publish, the reporting worker consumes.
	bus := outbox.NewBus(tel)
	worker := reporting.New(bus, cfg.LowStockThreshold,
		workerpresentation.EventMiddleware(nil, tel), tel)
	worker.Seed(products)
	worker.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	bus.Start(ctx)

	carts := cartapp.NewService(store, bus, tel)
	handler := httppresentation.NewHandler(httppresentation.Services{
		Catalog:           catalog.New(store),
		Admin:             catalog.NewAdmin(store, bus, tel),
		Carts:             carts,
		Checkout:          orderapp.NewCheckoutUseCase(carts, orders, bus, tel),
		Orders:            orderapp.NewService(orders, store, bus, tel),
		Pay:               paymentapp.NewPayUseCase(orders, payments, bus, tel),
		Payments:          paymentapp.NewService(orders, payments, bus, tel),
		LowStockThreshold: cfg.LowStockThreshold,
		Metrics:           promhttp.Handler(),
	}, tel)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.Int("products", len(products)),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			systemLogger.Error("http_server_error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	return bus.Stop(shutdownCtx)
}

// loadCatalog reads the seed catalog from path, or the built-in one.
func loadCatalog(path string) ([]*inventory.Product, error) {
	if path == "" {
		return catalogfile.Default()
	}
	products, err := catalogfile.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return products, nil
}
