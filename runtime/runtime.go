// Package runtime wires the actor package's Router and Workers
// together with the ambient stack — structured logging, crash
// reporting, Prometheus metrics, and the admin HTTP surface — into a
// single orchestrated process.
package runtime

import (
	"context"
	nethttp "net/http"

	"github.com/coreactor/actorkit/actor"
	"github.com/coreactor/actorkit/config"
	"github.com/coreactor/actorkit/crashreport"
	"github.com/coreactor/actorkit/http"
	"github.com/coreactor/actorkit/identity"
	"github.com/coreactor/actorkit/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// maxCrashReports bounds the in-memory crash report store every
// runtime starts with.
const maxCrashReports = 500

// Runtime owns the full set of workers for one process, along with
// the ambient surfaces built on top of them.
type Runtime struct {
	cfg      config.RuntimeConfig
	router   *actor.Router
	workers  []*actor.Worker
	reporter *crashreport.Reporter
	admin    *http.AdminServer

	httpServer    *nethttp.Server
	metricsServer *nethttp.Server

	logger *log.Entry
}

// New builds a runtime with cfg.WorkerCount workers (ids 1..N), a
// crash reporter wired to every worker and, when cfg.HTTP.Enabled, an
// admin HTTP server bound to the router. Workers are constructed but
// not started; call Start.
func New(cfg config.RuntimeConfig) *Runtime {
	router := actor.NewRouter()
	reporter := crashreport.NewReporter(crashreport.NewMemoryStore(maxCrashReports))

	rt := &Runtime{
		cfg:      cfg,
		router:   router,
		reporter: reporter,
		logger:   log.WithField("component", "runtime"),
	}

	n := cfg.WorkerCount
	if n <= 0 {
		n = 1
	}
	for i := 1; i <= n && i <= int(identity.MaxWorkerID); i++ {
		wid := uint8(i)
		w := actor.NewWorker(wid, router, actor.WithCrashHook(func(id identity.ServiceID, name, reason string) {
			reporter.Report(identity.WorkerID(id), uint32(id), name, reason)
		}))
		router.AddWorker(w)
		rt.workers = append(rt.workers, w)
	}

	if cfg.HTTP.Enabled {
		rt.admin = http.NewAdminServer(router)
	}

	return rt
}

// Router returns the runtime's router, for spawning services.
func (rt *Runtime) Router() *actor.Router { return rt.router }

// Workers returns every worker this runtime started.
func (rt *Runtime) Workers() []*actor.Worker { return rt.workers }

// Reporter returns the runtime's crash reporter.
func (rt *Runtime) Reporter() *crashreport.Reporter { return rt.reporter }

// Spawn places s on the worker chosen by the router's placement
// policy. It's a thin convenience wrapper over Router().Spawn.
func (rt *Runtime) Spawn(s *actor.Service) (identity.ServiceID, error) {
	return rt.router.Spawn(s)
}

// Start runs every worker and, per configuration, the admin HTTP and
// Prometheus metrics servers. It returns once the workers are ready;
// the HTTP servers run in background goroutines.
func (rt *Runtime) Start() {
	for _, w := range rt.workers {
		w.Run()
	}

	if rt.admin != nil {
		rt.httpServer = &nethttp.Server{Addr: rt.cfg.HTTP.Bind, Handler: rt.admin.Engine()}
		go func() {
			if err := rt.httpServer.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
				rt.logger.WithError(err).Error("admin http server exited")
			}
		}()
	}

	if rt.cfg.Metrics.Enabled {
		metrics.MustRegister(prometheus.DefaultRegisterer)

		mux := nethttp.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		rt.metricsServer = &nethttp.Server{Addr: rt.cfg.Metrics.Bind, Handler: mux}
		go func() {
			if err := rt.metricsServer.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
				rt.logger.WithError(err).Error("metrics http server exited")
			}
		}()
	}
}

// Stop shuts down the HTTP servers, stops every worker, waits for
// their reactor goroutines to drain, and closes the crash reporter.
func (rt *Runtime) Stop(ctx context.Context) error {
	if rt.httpServer != nil {
		if err := rt.httpServer.Shutdown(ctx); err != nil {
			rt.logger.WithError(err).Warn("admin http server shutdown error")
		}
	}
	if rt.metricsServer != nil {
		if err := rt.metricsServer.Shutdown(ctx); err != nil {
			rt.logger.WithError(err).Warn("metrics http server shutdown error")
		}
	}

	for _, w := range rt.workers {
		w.Stop()
	}
	for _, w := range rt.workers {
		w.Wait()
	}

	if err := rt.reporter.Close(); err != nil {
		return errors.Wrap(err, "runtime: closing crash reporter")
	}
	return nil
}
