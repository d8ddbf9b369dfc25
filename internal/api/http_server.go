package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shareit/internal/config"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
)

type BookingService interface {
	Create(ctx context.Context, userID int64, in service.NewBooking) (*models.Booking, error)
	Decide(ctx context.Context, userID, bookingID int64, approve bool) (*models.Booking, error)
	Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListForBooker(ctx context.Context, userID int64, state string, offset, limit int) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64, state string, offset, limit int) ([]models.Booking, error)
	ExportForOwner(ctx context.Context, ownerID int64, state string, maxRows int) ([]models.Booking, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, in service.NewItem) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, patch service.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, ownerID, itemID int64) error
	Get(ctx context.Context, viewerID, itemID int64) (*models.ItemView, error)
	ListForOwner(ctx context.Context, ownerID int64, offset, limit int) ([]models.ItemView, error)
	Search(ctx context.Context, text string, offset, limit int) ([]models.Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type UserService interface {
	Create(ctx context.Context, name, email string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int64, patch service.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type RequestService interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, userID int64) ([]models.ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, offset, limit int) ([]models.ItemRequest, error)
	Get(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error)
}

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Bookings BookingService
	Items    ItemService
	Users    UserService
	Requests RequestService
}

// HTTPServer exposes the backend REST API.
type HTTPServer struct {
	cfg        config.APIConfig
	pagination config.PaginationConfig
	svc        Services
	store      Pinger
	logger     *zerolog.Logger
	server     *http.Server
}

func NewHTTPServer(
	cfg config.APIConfig,
	pagination config.PaginationConfig,
	svc Services,
	store Pinger,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:        cfg,
		pagination: pagination,
		svc:        svc,
		store:      store,
		logger:     logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := recoverMiddleware(logger,
		requestIDMiddleware(
			loggingMiddleware(logger,
				metricsMiddleware(
					newRateLimiter(cfg.RateLimit).Wrap(mux)))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /bookings", s.withUser(s.handleCreateBooking))
	mux.HandleFunc("PATCH /bookings/{id}", s.withUser(s.handleDecideBooking))
	mux.HandleFunc("GET /bookings/{id}", s.withUser(s.handleGetBooking))
	mux.HandleFunc("GET /bookings", s.withUser(s.handleListBookerBookings))
	mux.HandleFunc("GET /bookings/owner", s.withUser(s.handleListOwnerBookings))
	mux.HandleFunc("GET /bookings/owner/export", s.withUser(s.handleExportOwnerBookings))

	mux.HandleFunc("POST /items", s.withUser(s.handleCreateItem))
	mux.HandleFunc("GET /items", s.withUser(s.handleListOwnerItems))
	mux.HandleFunc("GET /items/search", s.handleSearchItems)
	mux.HandleFunc("GET /items/{id}", s.withUser(s.handleGetItem))
	mux.HandleFunc("PATCH /items/{id}", s.withUser(s.handleUpdateItem))
	mux.HandleFunc("DELETE /items/{id}", s.withUser(s.handleDeleteItem))
	mux.HandleFunc("POST /items/{id}/comment", s.withUser(s.handleAddComment))

	mux.HandleFunc("POST /requests", s.withUser(s.handleCreateRequest))
	mux.HandleFunc("GET /requests", s.withUser(s.handleListOwnRequests))
	mux.HandleFunc("GET /requests/all", s.withUser(s.handleListOtherRequests))
	mux.HandleFunc("GET /requests/{id}", s.withUser(s.handleGetRequest))

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("readiness check failed")
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
