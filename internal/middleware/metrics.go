package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "librarium_redis_errors_total",
		Help: "Number of Redis commands that returned an error.",
	},
	[]string{"command"},
)

// InitMetrics registers the Prometheus HTTP middleware and exposes the
// scrape endpoint at /metrics.
func InitMetrics(app *fiber.App) {
	prom := fiberprometheus.New("librarium")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
