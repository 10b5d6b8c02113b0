// Package api exposes the workflow engine over HTTP for the dashboard
// frontends: entity creation, status transitions and filtered list/summary
// views.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, meta workflow.MKV) {}

func (nopLogger) Error(ctx context.Context, err error) {}

type Server struct {
	runner   *workflow.Runner
	store    workflow.EntityStore
	registry *workflow.Registry
	logger   workflow.Logger
}

func NewServer(runner *workflow.Runner, store workflow.EntityStore, registry *workflow.Registry, logger workflow.Logger) *Server {
	if logger == nil {
		logger = nopLogger{}
	}

	return &Server{
		runner:   runner,
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/kinds", s.listKinds)
	r.GET("/kinds/:kind", s.getKind)

	r.POST("/entities/:kind", s.createEntity)
	r.GET("/entities", s.listEntities)
	r.GET("/entities/summary", s.summariseEntities)
	r.GET("/entities/:id", s.getEntity)
	r.PATCH("/entities/:id", s.transitionEntity)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// entityResponse decorates an entity with the moves legal from its current
// status so the presentation layer can render action buttons without a second
// round trip.
type entityResponse struct {
	workflow.Entity
	AvailableTransitions []workflow.Status `json:"availableTransitions"`
}

func (s *Server) respondEntity(c *gin.Context, code int, e workflow.Entity) {
	available := s.runner.Engine().AvailableTransitions(e)
	if available == nil {
		available = []workflow.Status{}
	}

	c.JSON(code, entityResponse{Entity: e, AvailableTransitions: available})
}

type createRequest struct {
	OwnerID  string `json:"ownerId" binding:"required"`
	Priority string `json:"priority"`
}

func (s *Server) createEntity(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority, err := workflow.ParsePriority(req.Priority)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entity, err := s.runner.Create(c.Request.Context(), workflow.Kind(c.Param("kind")), req.OwnerID,
		workflow.WithPriority(priority),
	)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.respondEntity(c, http.StatusCreated, entity)
}

type transitionRequest struct {
	ToStatus string `json:"toStatus" binding:"required"`
	ActorID  string `json:"actorId" binding:"required"`
	Reason   string `json:"reason"`
}

func (s *Server) transitionEntity(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entity, err := s.runner.Transition(c.Request.Context(), c.Param("id"),
		workflow.Status(req.ToStatus), req.ActorID, req.Reason)
	if errors.Is(err, workflow.ErrIllegalTransition) || errors.Is(err, workflow.ErrTerminalState) {
		// Tell the frontend which moves are available so it can render the
		// rejection as "action not available" rather than a generic failure.
		valid := []workflow.Status{}
		if current, lookupErr := s.runner.Lookup(c.Request.Context(), c.Param("id")); lookupErr == nil {
			if available := s.runner.Engine().AvailableTransitions(current); available != nil {
				valid = available
			}
		}

		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      err.Error(),
			"validMoves": valid,
		})
		return
	} else if err != nil {
		s.respondError(c, err)
		return
	}

	s.respondEntity(c, http.StatusOK, entity)
}

func (s *Server) getEntity(c *gin.Context) {
	entity, err := s.runner.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.respondEntity(c, http.StatusOK, entity)
}

func (s *Server) listEntities(c *gin.Context) {
	kind := workflow.Kind(c.Query("kind"))
	if kind != "" {
		if _, err := s.registry.Get(kind); err != nil {
			s.respondError(c, err)
			return
		}
	}

	var filters []workflow.EntityFilter
	if status := c.Query("status"); status != "" {
		filters = append(filters, workflow.FilterByStatus(workflow.Status(status)))
	}
	if ownerID := c.Query("ownerId"); ownerID != "" {
		filters = append(filters, workflow.FilterByOwnerID(ownerID))
	}

	order := workflow.OrderTypeAscending
	if c.Query("order") == "desc" {
		order = workflow.OrderTypeDescending
	}

	var entities []workflow.Entity
	if c.Query("limit") == "" && c.Query("offset") == "" {
		// No explicit page requested: return the full listing rather than
		// silently truncating at the store's default page size.
		var err error
		entities, err = s.listAll(c.Request.Context(), kind, order, filters...)
		if err != nil {
			s.respondError(c, err)
			return
		}
	} else {
		limit, err := queryInt(c, "limit")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		offset, err := queryInt(c, "offset")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entities, err = s.store.List(c.Request.Context(), kind, int64(offset), limit, order, filters...)
		if err != nil {
			s.respondError(c, err)
			return
		}
	}

	if entities == nil {
		entities = []workflow.Entity{}
	}

	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// summariseEntities backs the dashboard headline counters: entities counted
// per status, optionally narrowed to one owner.
func (s *Server) summariseEntities(c *gin.Context) {
	kind := workflow.Kind(c.Query("kind"))
	if kind != "" {
		if _, err := s.registry.Get(kind); err != nil {
			s.respondError(c, err)
			return
		}
	}

	entities, err := s.listAll(c.Request.Context(), kind, workflow.OrderTypeAscending)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if ownerID := c.Query("ownerId"); ownerID != "" {
		entities = workflow.ForOwner(entities, ownerID)
	}

	c.JSON(http.StatusOK, gin.H{"counts": workflow.CountByStatus(entities)})
}

// listAll pages through the store until a short page so unbounded listings and
// summaries cover every matching entity.
func (s *Server) listAll(ctx context.Context, kind workflow.Kind, order workflow.OrderType, filters ...workflow.EntityFilter) ([]workflow.Entity, error) {
	const pageSize = 100

	var (
		all    []workflow.Entity
		offset int64
	)
	for {
		page, err := s.store.List(ctx, kind, offset, pageSize, order, filters...)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}

		offset += int64(len(page))
	}
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("query parameter must be a non-negative integer", j.KV("param", name))
	}

	return v, nil
}

func (s *Server) listKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": s.registry.Kinds()})
}

type kindResponse struct {
	Kind           workflow.Kind                         `json:"kind"`
	States         []workflow.Status                     `json:"states"`
	InitialState   workflow.Status                       `json:"initialState"`
	TerminalStates []workflow.Status                     `json:"terminalStates"`
	Transitions    map[workflow.Status][]workflow.Status `json:"transitions"`
}

func (s *Server) getKind(c *gin.Context) {
	kind := workflow.Kind(c.Param("kind"))
	d, err := s.registry.Get(kind)
	if err != nil {
		s.respondError(c, err)
		return
	}

	terminal := make([]workflow.Status, 0)
	for _, state := range d.States {
		if d.IsTerminal(state) {
			terminal = append(terminal, state)
		}
	}

	c.JSON(http.StatusOK, kindResponse{
		Kind:           kind,
		States:         d.States,
		InitialState:   d.InitialState,
		TerminalStates: terminal,
		Transitions:    d.Transitions,
	})
}

// respondError maps the workflow error taxonomy onto HTTP statuses. Routine
// rejections (illegal move, terminal state, missing reason) are 422s the
// frontend renders as "action not available"; stale writes are 409s the
// client resolves by reloading.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnknownKind), errors.Is(err, workflow.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrIllegalTransition),
		errors.Is(err, workflow.ErrTerminalState),
		errors.Is(err, workflow.ErrMissingReason):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
