package http

import (
	"net/http"
	"strconv"

	"github.com/coreactor/actorkit/actor"
	"github.com/coreactor/actorkit/identity"
	"github.com/gin-gonic/gin"
)

// AdminServer exposes read/control endpoints onto a running runtime's
// router: listing workers and their services, dispatching runcmd
// requests, and triggering a whole-runtime broadcast.
type AdminServer struct {
	router *actor.Router
	engine *gin.Engine
}

// NewAdminServer builds an admin server bound to router. Call Engine
// to get the gin.Engine to run with http.Server/ListenAndServe.
func NewAdminServer(router *actor.Router) *AdminServer {
	s := &AdminServer{router: router, engine: gin.New()}
	s.engine.Use(gin.Recovery(), LoggerMiddleware())
	s.registerRoutes()
	return s
}

// Engine returns the underlying gin.Engine.
func (s *AdminServer) Engine() *gin.Engine { return s.engine }

func (s *AdminServer) registerRoutes() {
	s.engine.GET("/workers", s.listWorkers)
	s.engine.GET("/workers/:id/services", s.listServices)
	s.engine.POST("/workers/:id/cmd", s.runCmd)
	s.engine.POST("/broadcast", s.broadcastAll)
}

type workerSummary struct {
	ID         uint8  `json:"id"`
	State      string `json:"state"`
	ServiceNum uint32 `json:"service_num"`
	Shared     bool   `json:"shared"`
	WorkTimeMs int64  `json:"work_time_ms"`
}

func (s *AdminServer) listWorkers(c *gin.Context) {
	workers := s.router.Workers()
	out := make([]workerSummary, 0, len(workers))
	for _, w := range workers {
		out = append(out, workerSummary{
			ID:         w.ID(),
			State:      w.State().String(),
			ServiceNum: w.ServiceNum(),
			Shared:     w.Shared(),
			WorkTimeMs: w.WorkTimeMs(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"workers": out})
}

func (s *AdminServer) parseWorkerID(c *gin.Context) (*actor.Worker, bool) {
	raw, err := strconv.ParseUint(c.Param("id"), 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid worker id"})
		return nil, false
	}
	w, ok := s.router.Worker(uint8(raw))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "worker not found"})
		return nil, false
	}
	return w, true
}

func (s *AdminServer) listServices(c *gin.Context) {
	w, ok := s.parseWorkerID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": w.ListServices()})
}

type runCmdRequest struct {
	Cmd string `json:"cmd" binding:"required"`
}

func (s *AdminServer) runCmd(c *gin.Context) {
	w, ok := s.parseWorkerID(c)
	if !ok {
		return
	}
	if !w.AllowExternalCommand() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	var req runCmdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// runcmd replies are delivered asynchronously as messages; the
	// admin surface fires the request and reports it accepted rather
	// than blocking the HTTP handler on an actor reply.
	w.RunCmd(adminSenderID, req.Cmd, 0)
	c.JSON(http.StatusAccepted, gin.H{"accepted": req.Cmd})
}

// adminSenderID is the reserved identity the admin HTTP surface uses
// as the "sender" of runcmd requests it issues on a caller's behalf.
// It never names a live service; any runcmd reply addressed to it is
// dropped as undeliverable by Router.Send's dead-service path.
const adminSenderID = identity.ServiceID(0)

func (s *AdminServer) broadcastAll(c *gin.Context) {
	var req struct {
		Header  string `json:"header"`
		Payload string `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.router.BroadcastAll(actor.NewBroadcast(0, actor.PTypeSystem, req.Header, []byte(req.Payload)))
	c.JSON(http.StatusAccepted, gin.H{"broadcast": req.Header})
}
