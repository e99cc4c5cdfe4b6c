package datastore

import (
	"context"
	"database/sql"

	"partnerhub/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePartner(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Partner)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Partner)(nil)).Index("index_partners_name").IfNotExists().Column("name").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreatePartner(ctx context.Context, db bun.IDB, partner *models.Partner) (*models.Partner, error) {
	_, err := db.NewInsert().Model(partner).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func FindPartnerByID(ctx context.Context, db bun.IDB, id int64) (*models.Partner, error) {
	var partner models.Partner
	err := db.NewSelect().Model(&partner).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// GetPartnersPaging returns the partners of one page, ordered by id, and the
// total row count.
func GetPartnersPaging(ctx context.Context, db bun.IDB, limit, offset int) ([]models.Partner, int, error) {
	partners := make([]models.Partner, 0, limit)
	count, err := db.NewSelect().Model(&partners).Order("id ASC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return partners, count, nil
}

// EditPartner writes only the given columns of partner.
func EditPartner(ctx context.Context, db bun.IDB, partner *models.Partner, columns ...string) (*models.Partner, error) {
	_, err := db.NewUpdate().Model(partner).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return partner, nil
}

// DeletePartner returns sql.ErrNoRows when no row matched id.
func DeletePartner(ctx context.Context, db bun.IDB, id int64) error {
	res, err := db.NewDelete().Model((*models.Partner)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func CountPartners(ctx context.Context, db bun.IDB) (int, error) {
	return db.NewSelect().Model((*models.Partner)(nil)).Count(ctx)
}
