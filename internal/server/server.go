package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"cupboard/internal/funding"
	"cupboard/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type NeedStore interface {
	Need(ctx context.Context, needID string) (*types.Need, error)
	Needs(ctx context.Context) ([]*types.Need, error)
	NeedsByCategory(ctx context.Context, category types.Category) ([]*types.Need, error)
	SearchNeeds(ctx context.Context, q string) ([]*types.Need, error)
	CreateNeed(ctx context.Context, need *types.Need) error
	UpdateNeed(ctx context.Context, needID string, need *types.Need) error
	DeleteNeed(ctx context.Context, needID string) error
}

type BasketStore interface {
	LinesByUser(ctx context.Context, username string) ([]*types.BasketLine, error)
	Item(ctx context.Context, itemID, username string) (*types.BasketItem, error)
	Upsert(ctx context.Context, username, needID string, quantity int) error
	UpdateQuantity(ctx context.Context, itemID, username string, quantity int) error
	Remove(ctx context.Context, itemID, username string) error
}

type UserStore interface {
	UserByUsername(ctx context.Context, username string) (*types.User, error)
	CreateUser(ctx context.Context, user *types.User) error
	TouchLastLogin(ctx context.Context, username string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, username string) (*funding.CheckoutResult, error)
}

type ProgressCalculator interface {
	ForNeed(ctx context.Context, need *types.Need) (funding.Progress, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	needs    NeedStore
	basket   BasketStore
	users    UserStore
	checkout CheckoutService
	progress ProgressCalculator

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	needs NeedStore,
	basket BasketStore,
	users UserStore,
	checkout CheckoutService,
	progress ProgressCalculator,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil || len(hashKey) == 0 {
		return nil, fmt.Errorf("decode cookie hash key: invalid or empty")
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil || len(blockKey) == 0 {
		return nil, fmt.Errorf("decode cookie block key: invalid or empty")
	}

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		needs:    needs,
		basket:   basket,
		users:    users,
		checkout: checkout,
		progress: progress,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed mux, mainly so tests can drive the full
// middleware chain through httptest.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/auth/current", s.handleCurrentUser, http.MethodGet)

		r.HandleFunc("/needs", s.handleListNeeds, http.MethodGet)
		r.HandleFunc("/needs/priority", s.handleListNeedsByPriority, http.MethodGet)
		r.HandleFunc("/needs/search", s.handleSearchNeeds, http.MethodGet)
		r.HandleFunc("/needs/category/:category", s.handleNeedsByCategory, http.MethodGet)
		r.HandleFunc("/needs/:id", s.handleGetNeed, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleManager))

			r.HandleFunc("/needs", s.handleCreateNeed, http.MethodPost)
			r.HandleFunc("/needs/:id", s.handleUpdateNeed, http.MethodPut)
			r.HandleFunc("/needs/:id", s.handleDeleteNeed, http.MethodDelete)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleHelper))

			r.HandleFunc("/basket", s.handleGetBasket, http.MethodGet)
			r.HandleFunc("/basket", s.handleAddToBasket, http.MethodPost)
			r.HandleFunc("/basket/checkout", s.handleCheckout, http.MethodPost)
			r.HandleFunc("/basket/:id", s.handleUpdateBasketItem, http.MethodPut)
			r.HandleFunc("/basket/:id", s.handleRemoveFromBasket, http.MethodDelete)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
