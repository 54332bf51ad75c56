package agent

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/glossary"
	"github.com/Ziolli/Case-Indicium/internal/intent"
	"github.com/Ziolli/Case-Indicium/internal/observability"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

// AskRequest is one conversational turn. PreviousIntent carries the
// context of the prior turn so follow-ups like "e em SP?" resolve.
type AskRequest struct {
	Question       string         `json:"question" binding:"required"`
	PreviousIntent *intent.Intent `json:"previous_intent,omitempty"`
}

// AskResponse pairs the markdown answer with the resolved intent; the
// client echoes the intent back on the next turn.
type AskResponse struct {
	Answer string        `json:"answer"`
	Intent intent.Intent `json:"intent"`
}

// Server exposes the agent over HTTP.
type Server struct {
	agent         *Agent
	reports       ReportBuilder
	healthChecker *observability.HealthChecker
	logger        *observability.Logger
}

// NewServer wires the HTTP layer around an agent.
func NewServer(agent *Agent, reports ReportBuilder, healthChecker *observability.HealthChecker) *Server {
	return &Server{
		agent:         agent,
		reports:       reports,
		healthChecker: healthChecker,
		logger:        observability.NewLogger("server"),
	}
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	logger := observability.NewLogger("http")
	r.Use(observability.RecoveryMiddleware(logger))
	r.Use(observability.RequestLoggingMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		if s.healthChecker != nil {
			response := s.healthChecker.GetHealthResponse(c.Request.Context())
			statusCode := http.StatusOK
			if response.Status == observability.HealthStatusUnhealthy {
				statusCode = http.StatusServiceUnavailable
			}
			c.JSON(statusCode, response)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "srag-agent",
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"metrics": observability.GetGlobalMetrics().GetAll(),
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/ask", s.handleAsk)
		api.GET("/report", s.handleReport)
		api.GET("/queries", s.handleListQueries)
		api.GET("/glossary/:term", s.handleGlossary)
	}

	return r
}

func (s *Server) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	answer, resolved := s.agent.Handle(c.Request.Context(), req.Question, req.PreviousIntent)
	c.JSON(http.StatusOK, AskResponse{Answer: answer, Intent: resolved})
}

func (s *Server) handleReport(c *gin.Context) {
	scope := c.DefaultQuery("scope", string(intent.ScopeNational))
	uf := c.Query("uf")

	if scope != string(intent.ScopeNational) && scope != string(intent.ScopeRegional) {
		enhancedErr := errors.NewInvalidInputError("scope", "must be 'br' or 'uf'")
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}
	if scope == string(intent.ScopeRegional) && !intent.ValidRegion(uf) {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidRegionError(uf)))
		return
	}

	md, err := s.reports.Build(c.Request.Context(), scope, uf)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"scope": scope, "uf": uf, "report": md})
}

func (s *Server) handleListQueries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"queries": store.NamedQueries()})
}

func (s *Server) handleGlossary(c *gin.Context) {
	term := c.Param("term")
	c.JSON(http.StatusOK, gin.H{
		"term":       term,
		"definition": glossary.Lookup(term),
	})
}

func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		inner := gin.H{
			"code":    enhancedErr.Code,
			"message": enhancedErr.Message,
		}
		if enhancedErr.Details != "" {
			inner["details"] = enhancedErr.Details
		}
		if enhancedErr.Suggestion != "" {
			inner["suggestion"] = enhancedErr.Suggestion
		}
		if len(enhancedErr.Metadata) > 0 {
			inner["metadata"] = enhancedErr.Metadata
		}
		return gin.H{"error": inner}
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}

func getErrorStatusCode(err error) int {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		switch enhancedErr.Code {
		case errors.ErrCodeInvalidInput, errors.ErrCodeMissingRequired,
			errors.ErrCodeInvalidRegion, errors.ErrCodeNotSelect,
			errors.ErrCodeForbiddenKeyword, errors.ErrCodeTableNotAllowed,
			errors.ErrCodeGuardRejection:
			return http.StatusBadRequest
		case errors.ErrCodeUnknownQuery:
			return http.StatusNotFound
		case errors.ErrCodeDatabaseConnection:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
