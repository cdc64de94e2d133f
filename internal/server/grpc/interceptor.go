package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// accessTokenInterceptor gates every method except the health service. The
// token travels in the "authorization" metadata key as "Bearer <token>".
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(strings.ToLower(common.AuthorizationHeaderName))
		if len(values) > 0 {
			header = values[0]
		}
	}

	principal, err := s.authenticate(header)
	if err != nil {
		s.logger.Info(ctx, "rejected grpc call", "method", info.FullMethod, "reason", err)
		if errors.Is(err, common.ErrMissingToken) {
			return nil, status.Error(codes.Unauthenticated, "Access token required")
		}
		return nil, status.Error(codes.PermissionDenied, "Invalid or expired token")
	}

	return handler(auth.WithPrincipal(ctx, principal), req)
}

func (s *GRPCServer) authenticate(header string) (auth.Principal, error) {
	token, err := auth.ParseBearerToken(header)
	if err != nil {
		return auth.Principal{}, err
	}
	return s.verifier.Verify(token)
}
