// Package remotetest is an in-memory implementation of the forms/instances
// REST resource. It backs the remote client tests and `formkit mock-server`.
package remotetest

import (
	"cmp"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	formkit "github.com/reoring/formkit"
	ginmw "github.com/reoring/formkit/middleware/gin"
	"github.com/reoring/formkit/remote"
)

// Option configures a Server.
type Option func(*Server)

// WithToken makes every route require "Authorization: Bearer <token>".
func WithToken(token string) Option { return func(s *Server) { s.token = token } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// WithClock overrides time.Now for created_at stamps.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// Server holds forms and instances in memory. It is safe for concurrent use.
type Server struct {
	token  string
	log    *slog.Logger
	now    func() time.Time
	engine *gin.Engine

	mu        sync.Mutex
	nextForm  int
	nextInst  int
	forms     map[int]formkit.RemoteForm
	instances map[int]remote.Instance
	failNext  []int
	requests  int
}

func New(opts ...Option) *Server {
	s := &Server{
		log:       slog.Default(),
		now:       time.Now,
		forms:     map[int]formkit.RemoteForm{},
		instances: map[int]remote.Instance{},
	}
	for _, o := range opts {
		o(s)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving the resource under /.
func (s *Server) Handler() http.Handler { return s.engine }

// FailNext makes the next len(statuses) requests fail with the given
// statuses, in order.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	s.failNext = append(s.failNext, statuses...)
	s.mu.Unlock()
}

// Requests returns the number of requests that reached a handler.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Form returns a stored form by id.
func (s *Server) Form(id formkit.SchemaID) (formkit.RemoteForm, bool) {
	n, err := strconv.Atoi(id.String())
	if err != nil {
		return formkit.RemoteForm{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rf, ok := s.forms[n]
	return rf, ok
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.logRequests, s.authenticate, s.injectFailures, ginmw.RejectDuplicateKeys())

	r.GET("/forms/", s.listForms)
	r.POST("/forms/", s.createForm)
	r.GET("/forms/:id/", s.getForm)
	r.PUT("/forms/:id/", s.updateForm)
	r.DELETE("/forms/:id/", s.deleteForm)
	r.GET("/forms/:id/preview/", s.preview)

	r.GET("/instances/", s.listInstances)
	r.POST("/instances/", s.createInstance)
	r.PUT("/instances/:id/", s.updateInstance)
	r.DELETE("/instances/:id/", s.deleteInstance)
	return r
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("mock request", "method", c.Request.Method, "path", c.Request.URL.Path,
		"status", c.Writer.Status(), "duration", time.Since(start))
}

func (s *Server) authenticate(c *gin.Context) {
	if s.token == "" {
		return
	}
	h := c.GetHeader("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); !ok || tok != s.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
	}
}

func (s *Server) injectFailures(c *gin.Context) {
	s.mu.Lock()
	s.requests++
	var status int
	if len(s.failNext) > 0 {
		status, s.failNext = s.failNext[0], s.failNext[1:]
	}
	s.mu.Unlock()
	if status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"detail": http.StatusText(status)})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func pathID(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("id"))
	return n, err == nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func rows(fields []formkit.FieldPayload) []formkit.RemoteField {
	out := make([]formkit.RemoteField, len(fields))
	for i, f := range fields {
		order := f.Order
		opts := append([]string{}, f.Options...)
		out[i] = formkit.RemoteField{
			Name:     f.Name,
			Type:     cmp.Or(f.Type, formkit.TypeText),
			Required: f.Required,
			Options:  opts,
			Order:    &order,
		}
	}
	return out
}
