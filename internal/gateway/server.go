package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const bodyKey = "gateway.body"

// Server validates client requests and relays the valid ones to the backend.
type Server struct {
	cfg    config.GatewayConfig
	client *BackendClient
	quota  domain.QuotaStore
	logger *zerolog.Logger
	now    func() time.Time
	engine *gin.Engine
	server *http.Server
}

// NewServer builds the gateway. quota may be nil to disable per-user limits.
func NewServer(cfg config.GatewayConfig, client *BackendClient, quota domain.QuotaStore, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		client: client,
		quota:  quota,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	engine := gin.New()
	engine.Use(requestIDMiddleware(), loggerMiddleware(logger), recoveryMiddleware(logger), s.quotaMiddleware(), readBody())
	s.routes(engine)
	s.engine = engine

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// WithClock replaces the time source used for booking date checks.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", s.forward())
	r.GET("/readyz", s.forward())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	user := r.Group("/", s.check(validateUserHeader))

	bookings := user.Group("/bookings")
	bookings.POST("", s.check(s.bookingBody), s.forward())
	bookings.PATCH("/:id", s.check(validatePathID, validateApproved), s.forward())
	bookings.GET("", s.check(validateState, validatePage), s.forward())
	bookings.GET("/owner", s.check(validateState, validatePage), s.forward())
	bookings.GET("/owner/export", s.check(validateState), s.forward())
	bookings.GET("/:id", s.check(validatePathID), s.forward())

	items := user.Group("/items")
	items.POST("", s.check(withBody(validateItemCreate)), s.forward())
	items.GET("", s.check(validatePage), s.forward())
	items.GET("/:id", s.check(validatePathID), s.forward())
	items.PATCH("/:id", s.check(validatePathID, withBody(validateItemPatch)), s.forward())
	items.DELETE("/:id", s.check(validatePathID), s.forward())
	items.POST("/:id/comment", s.check(validatePathID, withBody(validateComment)), s.forward())
	r.GET("/items/search", s.check(validatePage), s.forward())

	requests := user.Group("/requests")
	requests.POST("", s.check(withBody(validateRequest)), s.forward())
	requests.GET("", s.forward())
	requests.GET("/all", s.check(validatePage), s.forward())
	requests.GET("/:id", s.check(validatePathID), s.forward())

	users := r.Group("/users")
	users.POST("", s.check(withBody(validateUserCreate)), s.forward())
	users.GET("", s.forward())
	users.GET("/:id", s.check(validatePathID), s.forward())
	users.PATCH("/:id", s.check(validatePathID, withBody(validateUserPatch)), s.forward())
	users.DELETE("/:id", s.check(validatePathID), s.forward())
}

type checkFunc func(c *gin.Context) *validationError

// check runs the validators in order and aborts on the first failure.
func (s *Server) check(checks ...checkFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, fn := range checks {
			if err := fn(c); err != nil {
				metrics.IncRejected(err.reason)
				abortInvalid(c, err)
				return
			}
		}
		c.Next()
	}
}

func withBody(fn func(body []byte) *validationError) checkFunc {
	return func(c *gin.Context) *validationError {
		return fn(bodyOf(c))
	}
}

func (s *Server) bookingBody(c *gin.Context) *validationError {
	return validateBooking(bodyOf(c), s.now())
}

func (s *Server) forward() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.client.Forward(c.Request.Context(), c.Request, bodyOf(c))
		if err != nil {
			s.logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("backend unavailable")
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
			return
		}

		for k, v := range resp.Header {
			for _, val := range v {
				c.Writer.Header().Add(k, val)
			}
		}
		c.Status(resp.Status)
		_, _ = c.Writer.Write(resp.Body)
	}
}

// readBody buffers the request body so validators and the forwarder can
// both read it.
func readBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Next()
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.Set(bodyKey, body)
		c.Next()
	}
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Str("backend", s.cfg.BackendURL).Msg("gateway listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func bodyOf(c *gin.Context) []byte {
	v, _ := c.Get(bodyKey)
	body, _ := v.([]byte)
	return body
}
