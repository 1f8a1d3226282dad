package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/codes"
	"github.com/stoik/tempmail/services/mail-service/internal/mailbox"
)

type createAccountRequest struct {
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
	Service   string `json:"service"`
}

type extractCodesRequest struct {
	Text string `json:"text" binding:"required"`
}

type accountView struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Provider  models.Provider `json:"provider"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	providerName := req.Provider
	if providerName == "" {
		providerName = req.Service
	}

	account, err := h.svc.CreateAccount(c.Request.Context(), req.SessionID, providerName)
	if errors.Is(err, mailbox.ErrAllProvidersFailed) {
		fail(c, http.StatusBadGateway, "All email services failed")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("create account failed")
		fail(c, http.StatusInternalServerError, "Failed to create email account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"email":     account.Email,
		"password":  account.Password,
		"accountId": account.AccountID,
		"provider":  account.Provider,
		"sessionId": account.SessionID,
		"expiresAt": account.ExpiresAt,
	})
}

func (h *Handler) syncMessages(c *gin.Context) {
	accountID := c.Query("accountId")
	email := c.Query("email")
	providerName := c.Query("provider")
	if providerName == "" {
		providerName = c.Query("service")
	}
	if accountID == "" || email == "" || providerName == "" {
		fail(c, http.StatusBadRequest, "Account ID, email, and provider are required")
		return
	}

	messages, err := h.svc.SyncMessages(c.Request.Context(), accountID, email, providerName)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("sync failed")
		fail(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
		"count":    len(messages),
		"provider": providerName,
		"email":    email,
	})
}

func (h *Handler) storedMessages(c *gin.Context) {
	accountID := c.Query("accountId")
	if accountID == "" {
		fail(c, http.StatusBadRequest, "Account ID is required")
		return
	}

	messages, err := h.svc.StoredMessages(c.Request.Context(), accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("list stored messages failed")
		fail(c, http.StatusInternalServerError, "Failed to fetch stored messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
		"count":    len(messages),
	})
}

func (h *Handler) messageCodes(c *gin.Context) {
	accountID := c.Query("accountId")
	if accountID == "" {
		fail(c, http.StatusBadRequest, "Account ID is required")
		return
	}

	found, err := h.svc.Codes(c.Request.Context(), accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("code extraction failed")
		fail(c, http.StatusInternalServerError, "Failed to extract codes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "codes": found, "count": len(found)})
}

func (h *Handler) extractCodes(c *gin.Context) {
	var req extractCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Text is required")
		return
	}

	found := codes.Extract(req.Text)
	c.JSON(http.StatusOK, gin.H{"success": true, "codes": found, "count": len(found)})
}

func (h *Handler) sessionAccounts(c *gin.Context) {
	sessionID := c.Param("sessionId")

	accounts, err := h.svc.ListSessionAccounts(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("list session accounts failed")
		fail(c, http.StatusInternalServerError, "Failed to fetch session accounts")
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{
			ID:        a.AccountID,
			Email:     a.Email,
			Provider:  a.Provider,
			CreatedAt: a.CreatedAt,
			ExpiresAt: a.ExpiresAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": sessionID, "accounts": views})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	email := c.Param("email")

	if err := h.svc.DeleteAccount(c.Request.Context(), email); err != nil {
		h.log.Error().Err(err).Str("email", email).Msg("delete failed")
		fail(c, http.StatusInternalServerError, "Failed to delete email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email " + email + " deleted successfully"})
}

func (h *Handler) health(c *gin.Context) {
	health, err := h.svc.Health(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"status":  "unhealthy",
			"error":   "Database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    health.Status,
		"timestamp": health.Timestamp,
		"database":  health.Database,
		"providers": health.Providers,
	})
}

func (h *Handler) servicesStatus(c *gin.Context) {
	statuses := h.svc.ProbeProviders(c.Request.Context())

	available := 0
	for _, s := range statuses {
		if s.Available {
			available++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"providers": statuses,
		"available": available,
		"total":     len(statuses),
	})
}
