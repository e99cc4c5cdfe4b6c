package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"partnerhub/internal/datastore"
	"partnerhub/internal/models"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail = errors.New("The email must be a valid email address.")
	ErrEmailTaken   = errors.New("A user with this email already exists.")
	ErrUserNotFound = errors.New("user not found")
)

type ServiceUser struct {
	container  *do.Injector
	postgresDB *bun.DB
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB}, nil
}

// ValidateEmail returns ErrInvalidEmail or ErrEmailTaken when email cannot be
// used for a new user.
func (service *ServiceUser) ValidateEmail(ctx context.Context, email string) error {
	if validate.Var(email, "required,email") != nil {
		return errorx.Wrap(ErrInvalidEmail, errorx.Validation)
	}

	exists, err := datastore.CheckUserEmailExists(ctx, service.postgresDB, email)
	if err != nil {
		return errorx.Wrap(fmt.Errorf("check email: %w", err), errorx.Database)
	}
	if exists {
		return errorx.Wrap(ErrEmailTaken, errorx.Exist)
	}
	return nil
}

func (service *ServiceUser) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, errors.New("name is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	if err := service.ValidateEmail(ctx, email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := datastore.CreateUser(ctx, service.postgresDB, &models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, errorx.Wrap(fmt.Errorf("create user: %w", err), errorx.Database)
	}

	log.Println("Create new user:", "user:", user.ID, "email:", user.Email)
	return user, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if errorx.IsNoRows(err) {
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Database)
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
