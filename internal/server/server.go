package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/nobelium/internal/core"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
)

// Server exposes the merged graph and the staged reference index over HTTP.
// It serves reads only; the pipeline stages stay on the CLI.
type Server struct {
	Pipeline *core.Pipeline
}

func NewServer(p *core.Pipeline) *Server {
	return &Server{Pipeline: p}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", s.Health)
	r.GET("/api/stats", s.Stats)
	r.GET("/api/search", s.Search)
	r.POST("/api/resolve", s.Resolve)
	r.GET("/api/scholars/:id", s.GetScholar)
	r.GET("/api/scholars/:id/summary", s.GetScholarSummary)
	r.GET("/api/lineages/:id", s.GetLineage)
	r.GET("/api/lineages/:id/name", s.GetLineageName)

	return r
}

// logRequests tags every request with an id, echoes it in X-Request-ID and
// writes one access log line per request.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Header("X-Request-ID", id)
		c.Next()
		s.Pipeline.Log.Info("request handled",
			"request", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Stats(c *gin.Context) {
	report, err := s.Pipeline.Verify(c.Request.Context(), "")
	if err != nil {
		s.Pipeline.Log.Error("stats query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read graph stats"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	k, _ := strconv.Atoi(c.DefaultQuery("k", "0"))

	candidates, err := s.Pipeline.SearchReferences(c.Request.Context(), query, k)
	if err != nil {
		s.Pipeline.Log.Error("search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "candidates": candidates})
}

type ResolveRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (s *Server) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, name is required"})
		return
	}

	result, err := s.Pipeline.ResolveOne(c.Request.Context(), req.Name, req.Category)
	if err != nil {
		var rErr *common.ResolutionError
		if errors.As(err, &rErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rErr.Error()})
			return
		}
		s.Pipeline.Log.Error("resolve failed", "name", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetScholar(c *gin.Context) {
	id := c.Param("id")

	profile, err := s.Pipeline.Engine.GetScholar(c.Request.Context(), id)
	if err != nil {
		s.Pipeline.Log.Error("scholar lookup failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scholar lookup failed"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scholar not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) GetScholarSummary(c *gin.Context) {
	id := c.Param("id")

	profile, err := s.Pipeline.Engine.GetScholar(c.Request.Context(), id)
	if err != nil {
		s.Pipeline.Log.Error("scholar lookup failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scholar lookup failed"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scholar not found"})
		return
	}

	text, err := s.Pipeline.Summarizer.SummarizeScholar(c.Request.Context(), *profile)
	if err != nil {
		s.Pipeline.Log.Error("summary failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": profile.Name, "summary": text})
}

func (s *Server) GetLineage(c *gin.Context) {
	id, members, ok := s.lineageMembers(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "members": members})
}

func (s *Server) GetLineageName(c *gin.Context) {
	id, members, ok := s.lineageMembers(c)
	if !ok {
		return
	}

	name, err := s.Pipeline.Summarizer.NameLineage(c.Request.Context(), members)
	if err != nil {
		s.Pipeline.Log.Error("lineage naming failed", "lineage", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lineage naming failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": name})
}

// lineageMembers parses the :id param and loads the lineage. A false return
// means the response has already been written.
func (s *Server) lineageMembers(c *gin.Context) (int, []model.ScholarProfile, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lineage id must be numeric"})
		return 0, nil, false
	}

	members, err := s.Pipeline.Engine.ListLineageMembers(c.Request.Context(), id)
	if err != nil {
		s.Pipeline.Log.Error("lineage lookup failed", "lineage", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lineage lookup failed"})
		return 0, nil, false
	}
	if len(members) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "lineage not found"})
		return 0, nil, false
	}
	return id, members, true
}
