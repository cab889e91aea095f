package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hr-assistant/server/internal/agent/model"
	errx "github.com/hr-assistant/server/internal/core/error"
	logx "github.com/hr-assistant/server/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Answerer is the part of the chat service the HTTP layer needs.
type Answerer interface {
	Answer(ctx context.Context, req model.ChatRequest) model.ChatResult
	History(ctx context.Context, userEmail string) ([]*schema.Message, error)
	ClearHistory(ctx context.Context, userEmail string) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests for the chat endpoint
type Handler struct {
	service Answerer
	db      Pinger
}

// NewHandler creates a new chat handler. db may be nil, in which case /ready
// only reports the process as up.
func NewHandler(service Answerer, db Pinger) *Handler {
	return &Handler{service: service, db: db}
}

// chatRequest uses pointers so an absent field can be told apart from an empty one.
type chatRequest struct {
	Message   *string `json:"message"`
	UserEmail *string `json:"user_email"`
	UserName  string  `json:"user_name"`
}

// ChatResponse is the reply body of POST /chat
type ChatResponse struct {
	Response string `json:"response"`
}

// HistoryMessage is one transcript entry
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Register mounts the chat routes and middleware on r.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(RequestID(), CORS(), RequestLogger())

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	r.OPTIONS("/chat", h.Preflight)
	r.POST("/chat", h.Chat)
	r.OPTIONS("/chat/history", h.Preflight)
	r.GET("/chat/history", h.History)
	r.DELETE("/chat/history", h.ClearHistory)
}

// Chat answers one message
func (h *Handler) Chat(c *gin.Context) {
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Message == nil || body.UserEmail == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'message' or 'user_email'"})
		return
	}

	res := h.service.Answer(c.Request.Context(), model.ChatRequest{
		RequestID: c.GetString(requestIDKey),
		Message:   *body.Message,
		UserEmail: *body.UserEmail,
		UserName:  body.UserName,
	})
	c.JSON(http.StatusOK, ChatResponse{Response: res.Response})
}

// Preflight answers CORS preflight requests for /chat
func (h *Handler) Preflight(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "CORS Preflight OK"})
}

// History returns the stored transcript for ?user_email=
func (h *Handler) History(c *gin.Context) {
	email := strings.TrimSpace(c.Query("user_email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'user_email'"})
		return
	}

	msgs, err := h.service.History(c.Request.Context(), email)
	if err != nil {
		c.JSON(errx.StatusOf(err), gin.H{"error": errx.SafeMessage(err)})
		return
	}

	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		out = append(out, HistoryMessage{Role: string(m.Role), Content: m.Content})
	}
	c.JSON(http.StatusOK, gin.H{"user_email": email, "messages": out})
}

// ClearHistory deletes the stored transcript for ?user_email=
func (h *Handler) ClearHistory(c *gin.Context) {
	email := strings.TrimSpace(c.Query("user_email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'user_email'"})
		return
	}

	if err := h.service.ClearHistory(c.Request.Context(), email); err != nil {
		c.JSON(errx.StatusOf(err), gin.H{"error": errx.SafeMessage(err)})
		return
	}
	c.Status(http.StatusNoContent)
}

// Health reports the process as alive
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready checks database connectivity
func (h *Handler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			logx.Warn().Err(err).Msg("readiness check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "database connection failed",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// RequestID takes X-Request-ID from the caller or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// CORS reflects the caller's origin and allows credentials.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin, Access-Control-Request-Headers, Access-Control-Request-Method")
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		reqHeaders := c.GetHeader("Access-Control-Request-Headers")
		if reqHeaders == "" {
			reqHeaders = "Content-Type, Authorization"
		}
		c.Header("Access-Control-Allow-Headers", reqHeaders)
		c.Header("Access-Control-Max-Age", "600")
		c.Next()
	}
}

// RequestLogger logs one line per request through zerolog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logx.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logx.Error()
		}
		ev = ev.
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP())
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Msg("http request")
	}
}
