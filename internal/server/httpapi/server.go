// Package httpapi exposes the HTTP surface of the tradepost server: the
// credential flows under /auth and the item/answer endpoints under /category.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dkarklins/tradepost/internal/logging"
	"github.com/dkarklins/tradepost/internal/server/config"
	"github.com/dkarklins/tradepost/internal/server/services"
	"github.com/dkarklins/tradepost/internal/server/storage"
	"github.com/gorilla/mux"
)

type HTTPServer struct {
	address          string
	logger           logging.Logger
	users            *services.UserService
	items            *services.ItemService
	uploader         storage.Uploader
	jwtSecret        []byte
	tokenValidity    time.Duration
	devMode          bool
	enforceOwnership bool
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *services.UserService, is *services.ItemService, up storage.Uploader) *HTTPServer {
	return &HTTPServer{
		address:          cfg.EndpointAddr,
		logger:           l.With("module", "http_server"),
		users:            us,
		items:            is,
		uploader:         up,
		jwtSecret:        []byte(cfg.SecretKey),
		tokenValidity:    cfg.TokenValidityDuration,
		devMode:          cfg.DevMode,
		enforceOwnership: cfg.EnforceOwnership,
	}
}

// Router wires every route. Guarded routes go through requireSignin; item
// edit/delete are guarded only while ownership enforcement is on, which keeps
// the legacy unauthenticated behavior reachable behind the flag.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("", s.handleHome).Methods(http.MethodGet)
	a.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	a.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	a.HandleFunc("/signout", s.requireSignin(s.handleSignout)).Methods(http.MethodPost)
	a.HandleFunc("/feed", s.requireSignin(s.handleFeed)).Methods(http.MethodPost)

	c := r.PathPrefix("/category").Subrouter()
	c.HandleFunc("/postitem", s.requireSignin(s.handlePostItem)).Methods(http.MethodPost)
	c.HandleFunc("/getitem", s.handleListItems).Methods(http.MethodGet)
	c.HandleFunc("/item/{id}", s.handleItemDetail).Methods(http.MethodGet)
	c.HandleFunc("/edititem", s.maybeGuard(s.handleEditItem)).Methods(http.MethodPost)
	c.HandleFunc("/deleteitem", s.maybeGuard(s.handleDeleteItem)).Methods(http.MethodPost)
	c.HandleFunc("/getnumber/{id}", s.handleGetNumber).Methods(http.MethodGet)
	c.HandleFunc("/submitAnswer", s.handleSubmitAnswer).Methods(http.MethodPost)
	c.HandleFunc("/myresponses/{id}", s.handleMyResponses).Methods(http.MethodGet)
	c.HandleFunc("/mylistings/{id}", s.handleMyListings).Methods(http.MethodGet)
	c.HandleFunc("/confirmResponse/{id}", s.handleConfirmResponse).Methods(http.MethodPost)

	return r
}

func (s *HTTPServer) maybeGuard(h http.HandlerFunc) http.HandlerFunc {
	if s.enforceOwnership {
		return s.requireSignin(h)
	}
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
