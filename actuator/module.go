package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/havud29/asyncdep/config"
	"github.com/havud29/asyncdep/core"
	"github.com/havud29/asyncdep/loop"
	"github.com/havud29/asyncdep/web"
)

const Name = "actuator"

type module struct {
	gatherer prometheus.Gatherer
}

// Module adds health, info, runtime and metrics endpoints to the web engine.
// Metrics are served from gatherer, or the default registry when nil.
func Module(gatherer prometheus.Gatherer) core.Module {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &module{gatherer: gatherer}
}

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name, loop.Name} }

func (m *module) Configure(rt *core.Runtime) error {
	engine := web.Engine(rt)
	host := loop.FromRuntime(rt)
	cfg := core.MustLookup[config.Root](rt.Container())

	group := engine.Group(cfg.Actuator.BasePath)

	// Behaviours waiting on a dependency are a valid state, so they are
	// reported as detail and never fail the check.
	group.GET("/health", func(ctx *gin.Context) {
		s := host.Stats()
		deps := gin.H{"status": "UP", "outstanding": s.Outstanding}
		if s.Outstanding > 0 {
			deps["status"] = "AWAITING"
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status": "UP",
			"checks": gin.H{
				"dependencies": deps,
				"loop":         gin.H{"status": "UP", "frame": s.Frame},
			},
		})
	})

	group.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    cfg.App.Name,
				"version": cfg.App.Version,
			},
			"loop": gin.H{
				"frameRate": cfg.Loop.FrameRate,
				"interval":  host.Interval().String(),
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"time":         time.Now().UTC().Format(time.RFC3339),
				"pid":          os.Getpid(),
			},
		})
	})

	group.GET("/runtime", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, host.Stats())
	})

	if cfg.Observability.Metrics.Enabled {
		group.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})))
	}

	return nil
}

func (m *module) Start(_ context.Context, _ *core.Runtime) error { return nil }
func (m *module) Stop(_ context.Context, _ *core.Runtime) error  { return nil }
