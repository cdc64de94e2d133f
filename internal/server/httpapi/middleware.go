package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// authRequired resolves the bearer token into a Principal stored in the
// request context. A missing token is 401, anything else wrong with it 403.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		principal, err := s.authenticate(c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			s.deps.Metrics.RecordAuth(metrics.EventVerify, metrics.OutcomeRejected)
			s.logger.Info(ctx, "rejected request", "path", c.Request.URL.Path, "reason", err)
			if errors.Is(err, common.ErrMissingToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgTokenRequired})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgTokenInvalid})
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(ctx, principal))
		c.Next()
	}
}

func (s *HTTPServer) authenticate(header string) (auth.Principal, error) {
	token, err := auth.ParseBearerToken(header)
	if err != nil {
		return auth.Principal{}, err
	}
	return s.deps.Verifier.Verify(token)
}

// observe logs and measures every request. The route label is the matched
// pattern, never the raw path.
func (s *HTTPServer) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		route = c.Request.Method + " " + route
		code := c.Writer.Status()
		elapsed := time.Since(start)

		s.deps.Metrics.ObserveRequest(route, strconv.Itoa(code), elapsed)
		s.logger.Debug(c.Request.Context(), "request",
			"route", route,
			"status", code,
			"duration", elapsed,
		)
	}
}

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	})
}

// allowCORS allows any origin, as the browser frontend is served separately.
func allowCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		MaxAge:          12 * time.Hour,
	})
}
