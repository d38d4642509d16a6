package api

import (
	v1 "github.com/Behyna/payment-services/esewagateway/internal/api/v1"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App, handler *v1.Handler) {
	app.Get("/ping", handler.Pong)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/esewa/pay", handler.InitiatePayment)
	app.Post("/esewa/callback", handler.Callback)
	app.Get("/esewa/callback", handler.Callback)
	app.Get("/esewa/callback/:transaction", handler.Callback)
	app.Get("/esewa/relay", handler.Relay)
	app.Get("/esewa/relay/:transaction", handler.Relay)
}
