package middleware

import (
	"net/http"
	"os"
	"strings"

	"scholar-backend/domain/permissions"
	"scholar-backend/infrastructure/config"
	"scholar-backend/pkg/auth"
	"scholar-backend/pkg/common"
	pkgerrors "scholar-backend/pkg/errors"
)

// Authenticate creates the authentication middleware. In Lambda the JWT has
// already been validated by the API Gateway authorizer, so only the claim
// headers the gateway forwards are read; everywhere else the token is
// validated locally.
func Authenticate(cfg *config.Config) func(next http.Handler) http.Handler {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return AuthenticateForLambda()
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
	}
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
	})
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondUnauthorized(w, "authentication system error")
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "invalid token signature")
				default:
					respondUnauthorized(w, "invalid token")
				}
				return
			}

			ctx := common.WithActor(r.Context(), claims.ToActor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticateForLambda trusts the claim headers forwarded by the API
// Gateway JWT authorizer.
func AuthenticateForLambda() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := r.Header.Get("X-Username")
			if username == "" {
				respondUnauthorized(w, "missing user context from API Gateway")
				return
			}

			var rights []permissions.AccessRight
			for _, token := range strings.Split(r.Header.Get("X-Access-Rights"), ",") {
				if trimmed := strings.TrimSpace(token); trimmed != "" {
					rights = append(rights, permissions.AccessRight(trimmed))
				}
			}

			actor := permissions.Actor{
				Username:         username,
				OrganizationID:   r.Header.Get("X-Customer-Id"),
				AccessRights:     rights,
				IsExternalClient: r.Header.Get("X-External-Client") == "true",
			}

			ctx := common.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.ErrorTypeUnauthorized), message)
}
