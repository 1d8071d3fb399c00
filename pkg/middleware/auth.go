package middleware

import (
	"context"
	"net/http"

	"eventbook/pkg/httputil"
	"eventbook/pkg/logger"
	"eventbook/pkg/model"
	"eventbook/pkg/token"

	apperrors "eventbook/pkg/errors"

	"github.com/julienschmidt/httprouter"
)

const principalKey contextKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  string
}

func (p *Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// PrincipalLoader resolves a token subject to a live account. Looking the
// user up per request means deleted accounts and role changes take effect
// immediately instead of at token expiry.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*Principal, error)
}

// Authenticator guards routes with bearer-token checks. Protect covers
// authenticated routes, ProtectAdmin additionally requires the admin role.
type Authenticator struct {
	tokens *token.Manager
	users  PrincipalLoader
	log    *logger.Logger
}

func NewAuthenticator(tokens *token.Manager, users PrincipalLoader, log *logger.Logger) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
		log:    log,
	}
}

func (a *Authenticator) Protect(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, err := token.FromHeader(r.Header.Get("Authorization"))
		if err != nil {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Not authorized, no token"))
			return
		}

		claims, err := a.tokens.Validate(raw)
		if err != nil {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Not authorized, token failed"))
			return
		}

		principal, err := a.users.LoadPrincipal(r.Context(), claims.Subject)
		if err != nil {
			a.log.Warn("Token subject has no matching account",
				"request_id", RequestIDFromContext(r.Context()),
				"subject", claims.Subject,
			)
			_ = httputil.WriteError(w, apperrors.Unauthorized("User not found"))
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next(w, r.WithContext(ctx), ps)
	}
}

func (a *Authenticator) ProtectAdmin(next httprouter.Handle) httprouter.Handle {
	return a.Protect(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok || !principal.IsAdmin() {
			_ = httputil.WriteError(w, apperrors.Forbidden("Admin access only"))
			return
		}
		next(w, r, ps)
	})
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// ContextWithPrincipal is exported for handler tests.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
