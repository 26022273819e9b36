// Package stubserver implements the ticket store's REST contract in
// memory. It backs td-stub for local development and the end-to-end
// tests of the client.
package stubserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// RequestIDHeader carries the caller's correlation id.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Server serves the ticket API from a Store.
type Server struct {
	store    *Store
	classify ClassifyFunc
	logger   *zap.Logger
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithClassifier replaces the keyword triage used by the classify
// endpoint and by creates that omit category or priority.
func WithClassifier(f ClassifyFunc) Option {
	return func(s *Server) {
		if f != nil {
			s.classify = f
		}
	}
}

// WithLogger sets the access and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the gin engine for store. Routes live under /api.
func New(store *Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		classify: Triage,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), gin.Recovery())

	api := r.Group("/api")
	{
		tickets := api.Group("/tickets")
		tickets.GET("/", s.listTickets)
		tickets.POST("/", s.createTicket)
		tickets.PATCH("/:id/", s.updateTicket)
		tickets.POST("/classify/", s.classifyTicket)
		tickets.GET("/stats/", s.stats)
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// fieldErrors is the store's validation error body: field name to
// messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) { f[field] = append(f[field], msg) }

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
)

func invalidChoice(v string) string { return fmt.Sprintf("%q is not a valid choice.", v) }

func (s *Server) listTickets(c *gin.Context) {
	q := query.Query{
		Search:   c.Query("search"),
		Category: model.Category(c.Query("category")),
		Priority: model.Priority(c.Query("priority")),
		Status:   model.Status(c.Query("status")),
	}
	errs := fieldErrors{}
	if v := c.Query("category"); v != "" && !q.Category.IsValid() {
		errs.add("category", "Select a valid choice. "+v+" is not one of the available choices.")
	}
	if v := c.Query("priority"); v != "" && !q.Priority.IsValid() {
		errs.add("priority", "Select a valid choice. "+v+" is not one of the available choices.")
	}
	if v := c.Query("status"); v != "" && !q.Status.IsValid() {
		errs.add("status", "Select a valid choice. "+v+" is not one of the available choices.")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}
	c.JSON(http.StatusOK, s.store.List(q))
}

type createBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

func (s *Server) createTicket(c *gin.Context) {
	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}

	errs := fieldErrors{}
	title := requiredText(errs, "title", body.Title)
	if utf8.RuneCountInString(title) > model.MaxTitleLength {
		errs.add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxTitleLength))
	}
	description := requiredText(errs, "description", body.Description)

	t := model.Ticket{Title: title, Description: description, Status: model.StatusOpen}
	if v := optional(body.Category); v != "" {
		if t.Category = model.Category(v); !t.Category.IsValid() {
			errs.add("category", invalidChoice(v))
		}
	}
	if v := optional(body.Priority); v != "" {
		if t.Priority = model.Priority(v); !t.Priority.IsValid() {
			errs.add("priority", invalidChoice(v))
		}
	}
	if v := optional(body.Status); v != "" {
		if t.Status = model.Status(v); !t.Status.IsValid() {
			errs.add("status", invalidChoice(v))
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	if t.Category == "" || t.Priority == "" {
		sug := s.classify(description)
		if t.Category == "" {
			t.Category = sug.Category
		}
		if t.Priority == "" {
			t.Priority = sug.Priority
		}
	}
	created := s.store.Create(t)
	s.logger.Info("ticket created",
		zap.String("id", string(created.ID)),
		zap.String("category", string(created.Category)),
		zap.String("priority", string(created.Priority)),
		zap.String("request_id", c.GetString(requestIDKey)),
	)
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTicket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	var body struct {
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}
	current, err := s.store.Get(id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if body.Status == nil {
		c.JSON(http.StatusOK, current)
		return
	}
	status := model.Status(*body.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, fieldErrors{"status": {invalidChoice(*body.Status)}})
		return
	}
	updated, err := s.store.UpdateStatus(id, status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) classifyTicket(c *gin.Context) {
	var body struct {
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}
	errs := fieldErrors{}
	description := requiredText(errs, "description", body.Description)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}
	c.JSON(http.StatusOK, s.classify(description))
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

func requiredText(errs fieldErrors, field string, v *string) string {
	if v == nil {
		errs.add(field, msgRequired)
		return ""
	}
	text := strings.TrimSpace(*v)
	if text == "" {
		errs.add(field, msgBlank)
	}
	return text
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
