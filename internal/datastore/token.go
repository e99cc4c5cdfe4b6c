package datastore

import (
	"context"
	"time"

	"partnerhub/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePersonalAccessToken(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.PersonalAccessToken)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PersonalAccessToken)(nil)).Index("index_personal_access_tokens_token").IfNotExists().Unique().Column("token").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PersonalAccessToken)(nil)).Index("index_personal_access_tokens_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreatePersonalAccessToken(ctx context.Context, db bun.IDB, token *models.PersonalAccessToken) (*models.PersonalAccessToken, error) {
	_, err := db.NewInsert().Model(token).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func FindPersonalAccessTokenByID(ctx context.Context, db bun.IDB, id int64) (*models.PersonalAccessToken, error) {
	var token models.PersonalAccessToken
	err := db.NewSelect().Model(&token).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func FindPersonalAccessTokenByHash(ctx context.Context, db bun.IDB, hash string) (*models.PersonalAccessToken, error) {
	var token models.PersonalAccessToken
	err := db.NewSelect().Model(&token).Where("token = ?", hash).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func GetPersonalAccessTokensByUser(ctx context.Context, db bun.IDB, userID int64) ([]models.PersonalAccessToken, error) {
	var tokens []models.PersonalAccessToken
	err := db.NewSelect().Model(&tokens).Where("user_id = ?", userID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func TouchPersonalAccessToken(ctx context.Context, db bun.IDB, id int64, usedAt time.Time) error {
	_, err := db.NewUpdate().Model((*models.PersonalAccessToken)(nil)).
		Set("last_used_at = ?", usedAt).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func CountPersonalAccessTokens(ctx context.Context, db bun.IDB) (int, error) {
	return db.NewSelect().Model((*models.PersonalAccessToken)(nil)).Count(ctx)
}
