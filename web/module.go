package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havud29/asyncdep/config"
	"github.com/havud29/asyncdep/core"
)

const Name = "web"

// Engine returns the gin engine registered by the web module.
func Engine(rt *core.Runtime) *gin.Engine {
	return core.MustLookup[*gin.Engine](rt.Container())
}

// Module serves the diagnostics HTTP surface. The engine is registered in the
// runtime container during Configure so other modules can add routes.
func Module(opts ...Option) core.Module {
	var options Options
	for _, o := range opts {
		o(&options)
	}
	return &webModule{opts: options}
}

type webModule struct {
	opts    Options
	enabled bool
	server  *http.Server
}

func (m *webModule) Name() string        { return Name }
func (m *webModule) DependsOn() []string { return nil }

func (m *webModule) Configure(rt *core.Runtime) error {
	cfg := core.MustLookup[config.Root](rt.Container())
	l := rt.Logger()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(RequestID(), RecoveryProblem(l), AccessLog(l))
	r.Use(m.opts.Middlewares...)
	for _, reg := range m.opts.Routes {
		reg(r)
	}

	m.enabled = cfg.Server.Enabled
	m.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := core.Register[*gin.Engine](rt.Container(), r); err != nil {
		return err
	}
	return core.Register[*http.Server](rt.Container(), m.server)
}

func (m *webModule) Start(_ context.Context, rt *core.Runtime) error {
	if !m.enabled {
		rt.Logger().Info("http server disabled")
		return nil
	}
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	l := rt.Logger()
	go func() {
		l.Info("http server starting", "addr", ln.Addr().String())
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", "error", err)
		}
	}()
	return nil
}

func (m *webModule) Stop(ctx context.Context, _ *core.Runtime) error {
	if !m.enabled {
		return nil
	}
	if err := m.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
