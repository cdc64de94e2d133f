package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// NotesServiceName is the fully qualified gRPC service name.
const NotesServiceName = "gophnotes.v1.Notes"

type noteLister interface {
	List(ctx context.Context, p auth.Principal) ([]*models.Note, error)
}

// notesServer is the handler type checked by grpc.Server.RegisterService.
type notesServer interface {
	Profile(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListNotes(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// The service uses well-known message types only, so it needs no generated
// code.
var notesServiceDesc = grpc.ServiceDesc{
	ServiceName: NotesServiceName,
	HandlerType: (*notesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Profile", Handler: unaryHandler("Profile", notesServer.Profile)},
		{MethodName: "ListNotes", Handler: unaryHandler("ListNotes", notesServer.ListNotes)},
	},
	Metadata: "gophnotes/v1/notes.proto",
}

func unaryHandler(method string, call func(notesServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) grpc.MethodHandler {
	fullMethod := "/" + NotesServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(notesServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(notesServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Profile returns the identity carried by the session token.
func (s *GRPCServer) Profile(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Access token required")
	}
	return structpb.NewStruct(map[string]any{
		"id":       p.ID,
		"username": p.Username,
	})
}

// ListNotes returns the caller's notes.
func (s *GRPCServer) ListNotes(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Access token required")
	}

	notes, err := s.notes.List(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrMissingToken) {
			return nil, status.Error(codes.Unauthenticated, "Access token required")
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	items := make([]any, 0, len(notes))
	for _, n := range notes {
		items = append(items, map[string]any{
			"id":          n.ID,
			"title":       n.Title,
			"description": n.Description,
			"createdAt":   n.CreatedAt.UTC().Format(time.RFC3339),
			"updatedAt":   n.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return structpb.NewStruct(map[string]any{"notes": items})
}
