package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/RYGhub/ryglfg/internal/domain"
	"github.com/RYGhub/ryglfg/internal/present/rest/presenter"
	"github.com/RYGhub/ryglfg/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// RequireIdentity verifies the bearer credential and stores the
// resulting subject in the request context. Requests without a valid
// credential are rejected before any handler logic runs.
func (m *AuthMiddleware) RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader == "" {
			return presenter.Unauthorized(c)
		}

		split := strings.Split(authHeader, " ")
		if len(split) != 2 {
			span.RecordError(errors.New("invalid authentication header"))
			return presenter.Unauthorized(c)
		}

		authType, token := split[0], split[1]
		if authType != "Bearer" {
			span.RecordError(errors.New("only Bearer is acceptable"))
			return presenter.Unauthorized(c)
		}

		subject, err := m.auth.Authenticate(ctx, token)
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.RequireIdentity: authentication failed"))
			return presenter.Unauthorized(c)
		}

		ctx = context.WithValue(ctx, domain.SubjectCtxKey, subject)
		span.SetAttributes(attribute.String("RequesterId", subject.ID))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
