package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

var errInvalidToken = errors.New("invalid token")

// Claims are the bearer token claims; Subject carries the viewer id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type activeChecker interface {
	EnsureActive(ctx context.Context, viewer domain.Viewer) error
}

// Authenticator turns a bearer token into a Viewer and refuses deactivated accounts.
type Authenticator struct {
	secret []byte
	issuer string
	guard  activeChecker
	logger logx.Logger
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator. A nil guard skips the deactivation check.
func NewAuthenticator(secret, issuer string, guard activeChecker, logger logx.Logger) *Authenticator {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer, guard: guard, logger: logger, now: time.Now}
}

// Parse validates raw and returns the viewer it names.
func (a *Authenticator) Parse(raw string) (domain.Viewer, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !tok.Valid || strings.TrimSpace(claims.Subject) == "" {
		return domain.Viewer{}, errInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Viewer{}, err
	}
	return domain.Viewer{ID: strings.TrimSpace(claims.Subject), Role: role}, nil
}

// Handler returns chi-style middleware.
func (a *Authenticator) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			viewer, err := a.Parse(raw)
			if err != nil {
				if errors.Is(err, apperr.ErrPermission) {
					writeJSONError(w, http.StatusForbidden, apperr.PublicMessage(err))
					return
				}
				a.logger.Debug("bearer token rejected",
					logx.String("request_id", chimw.GetReqID(r.Context())),
					logx.Err(err),
				)
				writeJSONError(w, http.StatusUnauthorized, errInvalidToken.Error())
				return
			}

			if a.guard != nil {
				if err := a.guard.EnsureActive(r.Context(), viewer); err != nil {
					a.logger.Warn("viewer refused",
						logx.String("viewer", viewer.Key()),
						logx.Err(err),
					)
					writeJSONError(w, apperr.MetadataFor(err).HTTPStatus, apperr.PublicMessage(err))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

// SignToken issues an HS256 token for v, valid for ttl from now.
func SignToken(secret, issuer string, v domain.Viewer, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(v.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   v.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearer(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}
