package handler

import (
	"context"
	"errors"
	"log"
	"strings"

	"partnerhub/internal/interfaces"
	"partnerhub/internal/models"
	"partnerhub/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/labstack/echo/v4"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"
var ctxKeyAuthToken ctxKey = "AUTH_TOKEN"

// bearerToken extracts the credential of an "Authorization: Bearer" header.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authn terminates every request that does not carry a valid bearer token.
func Authn(resolver interfaces.TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return errorx.Wrap(services.ErrUnauthenticated, errorx.Authn)
			}

			token, user, err := resolver.Resolve(c.Request().Context(), raw)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			ctx = context.WithValue(ctx, ctxKeyAuthToken, token)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAbility rejects tokens that were not granted ability.
func RequireAbility(ability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := ResolveValidToken(c.Request().Context())
			if err != nil {
				return err
			}

			if !token.Can(ability) {
				return errorx.Wrap(services.ErrForbidden, errorx.Authz)
			}
			return next(c)
		}
	}
}

// Throttle allows perMinute requests per token.
func Throttle(l interfaces.Limiter, perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := ResolveValidToken(c.Request().Context())
			if err != nil {
				return err
			}

			err = l.Allow(c.Request().Context(), services.LimitKeyToken(token.ID), redis_rate.PerMinute(perMinute))
			if errors.Is(err, limiter.ErrRateLimited) {
				return errorx.Wrap(err, errorx.RateLimiting)
			}
			if err != nil {
				// fail open
				log.Println("rate limiter:", err)
			}
			return next(c)
		}
	}
}

func ResolveValidUser(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(ctxKeyAuthUser).(*models.User)
	if !ok || user == nil {
		return nil, errorx.Wrap(services.ErrUnauthenticated, errorx.Authn)
	}
	return user, nil
}

func ResolveValidToken(ctx context.Context) (*models.PersonalAccessToken, error) {
	token, ok := ctx.Value(ctxKeyAuthToken).(*models.PersonalAccessToken)
	if !ok || token == nil {
		return nil, errorx.Wrap(services.ErrUnauthenticated, errorx.Authn)
	}
	return token, nil
}
