package main

import (
	"context"
	"time"

	"github.com/Behyna/payment-services/esewagateway/internal/api"
	apivalidator "github.com/Behyna/payment-services/esewagateway/internal/api/validator"
	v1 "github.com/Behyna/payment-services/esewagateway/internal/api/v1"
	"github.com/Behyna/payment-services/esewagateway/internal/config"
	"github.com/Behyna/payment-services/esewagateway/internal/database"
	apperrors "github.com/Behyna/payment-services/esewagateway/internal/errors"
	"github.com/Behyna/payment-services/esewagateway/internal/metrics"
	"github.com/Behyna/payment-services/esewagateway/internal/publishers"
	"github.com/Behyna/payment-services/esewagateway/internal/repository"
	"github.com/Behyna/payment-services/esewagateway/internal/service"
	"github.com/Behyna/payment-services/esewagateway/pkg/esewa"
	"github.com/Behyna/payment-services/esewagateway/pkg/httpclient"
	"github.com/Behyna/payment-services/esewagateway/pkg/mq"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,
			database.NewConnection,
			newRabbitMQ,
			newVerifiedPublisher,
			newGateway,
			repository.NewTxManager,
			repository.NewPaymentRepository,
			service.NewPaymentService,
			validator.New,
			apivalidator.NewXValidator,
			v1.NewHandler,
			newFiber,
		),
		fx.Invoke(startServer),
	).Run()
}

func newFiber(m *metrics.Metrics, logger *zap.Logger) *fiber.App {
	engine := html.New("./views", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: apperrors.ErrorHandler(),
	})

	app.Use(metrics.HealthCheckMiddleware())
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))

	return app
}

func newGateway(cfg *config.Config) esewa.Gateway {
	client := httpclient.NewHTTPClient(cfg.Esewa.Timeout)
	return esewa.NewGateway(cfg.Esewa, client)
}

func newRabbitMQ(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.MQ, logger)
}

func newVerifiedPublisher(rabbit *mq.RabbitMQ, logger *zap.Logger) (service.VerifiedPublisher, error) {
	if err := rabbit.DeclareTopology([]string{publishers.QueueVerified}); err != nil {
		return nil, err
	}

	publisher, err := rabbit.CreatePublisher()
	if err != nil {
		return nil, err
	}

	return publishers.NewVerifiedPublisher(publisher, logger), nil
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, db *gorm.DB,
	m *metrics.Metrics, logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler)

	collector := metrics.NewSystemCollector(m, logger)
	dbCollector := metrics.NewDatabaseMetricsCollector(m, logger, db)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			collector.Start(15 * time.Second)
			dbCollector.Start(15 * time.Second)
			go func() {
				if err := app.Listen(cfg.API.Port); err != nil {
					logger.Error("Server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			collector.Stop()
			dbCollector.Stop()
			return app.ShutdownWithContext(ctx)
		},
	})
}
