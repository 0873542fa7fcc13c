package service

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/RYGhub/ryglfg/guard"
)

var tracer = otel.Tracer("auth")

// AuthService verifies bearer tokens against the issuer's JWKS and
// extracts the subject and its permission strings.
type AuthService struct {
	issuer   string
	audience string
	keySet   func(ctx context.Context) (jwk.Set, error)
}

func NewAuthService(ctx context.Context, domain string, audience string) (*AuthService, error) {
	issuer := "https://" + domain + "/"
	jwksURL := issuer + ".well-known/jwks.json"

	cache := jwk.NewCache(ctx)
	err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute))
	if err != nil {
		return nil, errors.Wrap(err, "failed to register jwks url")
	}

	return &AuthService{
		issuer:   issuer,
		audience: audience,
		keySet: func(ctx context.Context) (jwk.Set, error) {
			return cache.Get(ctx, jwksURL)
		},
	}, nil
}

// NewAuthServiceWithKeySet builds a verifier around a fixed key set.
func NewAuthServiceWithKeySet(issuer string, audience string, set jwk.Set) *AuthService {
	return &AuthService{
		issuer:   issuer,
		audience: audience,
		keySet: func(ctx context.Context) (jwk.Set, error) {
			return set, nil
		},
	}
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (guard.Subject, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	set, err := s.keySet(ctx)
	if err != nil {
		span.RecordError(err)
		return guard.Subject{}, errors.Wrap(err, "failed to fetch key set")
	}

	parsed, err := jwt.Parse(
		[]byte(token),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		span.RecordError(err)
		return guard.Subject{}, errors.Wrap(err, "token verification failed")
	}

	subject := guard.Subject{ID: parsed.Subject()}
	if raw, ok := parsed.Get("permissions"); ok {
		if values, ok := raw.([]any); ok {
			for _, value := range values {
				if permission, ok := value.(string); ok {
					subject.Permissions = append(subject.Permissions, permission)
				}
			}
		}
	}

	return subject, nil
}
