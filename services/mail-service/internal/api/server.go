// Package api exposes the mailbox service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/mailbox"
)

// Mailbox is the part of mailbox.Service the handlers use.
type Mailbox interface {
	CreateAccount(ctx context.Context, sessionID, providerName string) (*models.Account, error)
	SyncMessages(ctx context.Context, accountID, email, providerName string) ([]models.Message, error)
	ListSessionAccounts(ctx context.Context, sessionID string) ([]models.Account, error)
	DeleteAccount(ctx context.Context, email string) error
	StoredMessages(ctx context.Context, accountID string) ([]models.Message, error)
	Codes(ctx context.Context, accountID string) ([]mailbox.MessageCode, error)
	Health(ctx context.Context) (mailbox.Health, error)
	ProbeProviders(ctx context.Context) []mailbox.ProviderStatus
}

var _ Mailbox = (*mailbox.Service)(nil)

type Config struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Handler struct {
	svc Mailbox
	log zerolog.Logger
}

func NewHandler(svc Mailbox, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter builds the gin engine with middleware and every /api route.
func NewRouter(h *Handler, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(h.log), RequestLogger(h.log), CORS(cfg.AllowedOrigins))
	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimit(NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.POST("/codes/extract", h.extractCodes)

		email := api.Group("/email")
		email.POST("/create", h.createAccount)
		email.GET("/messages", h.syncMessages)
		email.GET("/stored", h.storedMessages)
		email.GET("/codes", h.messageCodes)
		email.GET("/session/:sessionId", h.sessionAccounts)
		email.GET("/services/status", h.servicesStatus)
		email.DELETE("/:email", h.deleteAccount)
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not found")
	})

	return r
}
