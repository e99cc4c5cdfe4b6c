package datastore

import (
	"context"
	"strings"

	"partnerhub/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_users_email").IfNotExists().Unique().Column("email").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateUser(ctx context.Context, db bun.IDB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func FindUserByID(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CheckUserEmailExists(ctx context.Context, db bun.IDB, email string) (bool, error) {
	return db.NewSelect().Model((*models.User)(nil)).Where("lower(email) = ?", strings.ToLower(email)).Exists(ctx)
}

func CountUsers(ctx context.Context, db bun.IDB) (int, error) {
	return db.NewSelect().Model((*models.User)(nil)).Count(ctx)
}
