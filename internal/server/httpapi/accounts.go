package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *HTTPServer) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	account, err := s.deps.Accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.deps.Metrics.RecordAuth(metrics.EventSignup, outcome(err))
		writeError(c, err, msgInternal)
		return
	}

	s.deps.Metrics.RecordAuth(metrics.EventSignup, metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"userId":  account.ID,
	})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	session, err := s.deps.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.deps.Metrics.RecordAuth(metrics.EventLogin, outcome(err))
		writeError(c, err, msgInternal)
		return
	}

	s.deps.Metrics.RecordAuth(metrics.EventLogin, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt.UTC().Format(time.RFC3339),
		"user":      session.Account,
	})
}

func (s *HTTPServer) profile(c *gin.Context) {
	p, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgTokenRequired})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile accessed successfully",
		"user":    models.PublicAccount{ID: p.ID, Username: p.Username},
	})
}

func outcome(err error) string {
	if errors.Is(err, common.ErrorInternal) {
		return metrics.OutcomeError
	}
	return metrics.OutcomeRejected
}
