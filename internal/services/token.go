package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"partnerhub/internal/datastore"
	"partnerhub/internal/models"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceToken struct {
	container   *do.Injector
	postgresDB  *bun.DB
	serviceUser *ServiceUser
	now         func() time.Time
}

func NewServiceToken(container *do.Injector) (*ServiceToken, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServiceToken{container, postgresDB, serviceUser, time.Now}, nil
}

// HashToken returns the hex sha256 digest stored for a token secret.
func HashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// GenerateTokenSecret returns 64 random hex characters.
func GenerateTokenSecret() (string, error) {
	var b strings.Builder
	for i := 0; i < 2; i++ {
		raw, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		b.WriteString(strings.ReplaceAll(raw.String(), "-", ""))
	}
	return b.String(), nil
}

// ValidateAbilities rejects abilities an operator cannot grant.
func ValidateAbilities(abilities []string) error {
	for _, ability := range abilities {
		known := ability == models.AbilityAll
		for _, a := range models.Abilities {
			known = known || a == ability
		}
		if !known {
			return fmt.Errorf("Unknown ability [%s]. Valid abilities: %s.", ability, strings.Join(models.Abilities, ", "))
		}
	}
	return nil
}

// CreateToken stores a new token for user and returns it together with the
// plain text value "<id>|<secret>". The plain text is not recoverable later.
func (service *ServiceToken) CreateToken(ctx context.Context, user *models.User, name string, abilities []string, expiresAt *time.Time) (*models.PersonalAccessToken, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", errors.New("token name is required")
	}
	if len(abilities) == 0 {
		return nil, "", errors.New("at least one ability is required")
	}
	if err := ValidateAbilities(abilities); err != nil {
		return nil, "", err
	}

	secret, err := GenerateTokenSecret()
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	now := service.now().UTC()
	token, err := datastore.CreatePersonalAccessToken(ctx, service.postgresDB, &models.PersonalAccessToken{
		UserID:    user.ID,
		Name:      strings.TrimSpace(name),
		Token:     HashToken(secret),
		Abilities: abilities,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create token: %w", err)
	}

	log.Println("Create new token:", "user:", user.ID, "token:", token.ID, "abilities:", strings.Join(abilities, ","))
	return token, fmt.Sprintf("%d|%s", token.ID, secret), nil
}

// Resolve finds the token and its owner for a bearer value. Unknown,
// mismatched and expired tokens are errorx.Authn errors.
func (service *ServiceToken) Resolve(ctx context.Context, plainText string) (*models.PersonalAccessToken, *models.User, error) {
	plainText = strings.TrimSpace(plainText)
	if plainText == "" {
		return nil, nil, errUnauthenticated()
	}

	token, err := service.findToken(ctx, plainText)
	if errorx.IsNoRows(err) {
		return nil, nil, errUnauthenticated()
	}
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Database)
	}

	now := service.now()
	if token.Expired(now) {
		return nil, nil, errUnauthenticated()
	}

	user, err := service.serviceUser.FindUserByID(ctx, token.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil, errUnauthenticated()
	}
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Database)
	}

	if err := datastore.TouchPersonalAccessToken(ctx, service.postgresDB, token.ID, now.UTC()); err != nil {
		log.Println("touch token:", token.ID, err)
	}

	return token, user, nil
}

func (service *ServiceToken) findToken(ctx context.Context, plainText string) (*models.PersonalAccessToken, error) {
	idPart, secret, found := strings.Cut(plainText, "|")
	if !found {
		return datastore.FindPersonalAccessTokenByHash(ctx, service.postgresDB, HashToken(plainText))
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || secret == "" {
		return nil, sql.ErrNoRows
	}

	token, err := datastore.FindPersonalAccessTokenByID(ctx, service.postgresDB, id)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(token.Token), []byte(HashToken(secret))) != 1 {
		return nil, sql.ErrNoRows
	}
	return token, nil
}
