package interfaces

import (
	"context"

	"partnerhub/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// TokenResolver turns a bearer token into the token record and its owner.
type TokenResolver interface {
	Resolve(ctx context.Context, plainText string) (*models.PersonalAccessToken, *models.User, error)
}
