package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"clinic-api/internal/model"
)

// SessionCookie carries the session token for browsers; gRPC clients send
// the same value under the metadata key of the same name.
const SessionCookie = "session-token"

type ctxKey string

const identityKey ctxKey = "identity"

// CallerIdentifier resolves a session token to the calling identity.
type CallerIdentifier interface {
	IdentifyCaller(ctx context.Context, token string) (*model.Identity, error)
}

func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (*model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*model.Identity)
	return id, ok && id != nil
}

// SessionToken returns the request's session cookie value, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// Session rejects requests without a live session and stores the caller in
// the request context.
func Session(gate CallerIdentifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := gate.IdentifyCaller(r.Context(), SessionToken(r))
			if err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// skip auth for these. Logout is idempotent like its HTTP twin.
var open = map[string]bool{
	"/clinic.v1.ClinicService/Login":  true,
	"/clinic.v1.ClinicService/Logout": true,
}

// Auth is the gRPC counterpart of Session.
func Auth(gate CallerIdentifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		raw := ""
		if vals := md.Get(SessionCookie); len(vals) > 0 {
			raw = vals[0]
		}

		id, err := gate.IdentifyCaller(ctx, raw)
		if err != nil {
			if model.IsStorage(err) {
				slog.ErrorContext(ctx, "identify caller", slog.String("error", err.Error()))
				return nil, status.Error(codes.Internal, "internal error")
			}
			return nil, status.Error(codes.Unauthenticated, "not authenticated")
		}
		return next(WithIdentity(ctx, id), req)
	}
}
