package services

import (
	"context"
	"fmt"
	"time"

	"partnerhub/internal/datastore"
	"partnerhub/internal/models"
	"partnerhub/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServicePartner struct {
	container  *do.Injector
	postgresDB *bun.DB
	cache      caching.Cache
}

func NewServicePartner(container *do.Injector) (*ServicePartner, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServicePartner{container, postgresDB, cache}, nil
}

// ListPartners returns one page ordered by id. Out of range arguments fall
// back to page 1 and the default page size; perPage is capped.
func (service *ServicePartner) ListPartners(ctx context.Context, page, perPage int) (*models.PartnerPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = PARTNER_DEFAULT_PER_PAGE
	}
	if perPage > PARTNER_MAX_PER_PAGE {
		perPage = PARTNER_MAX_PER_PAGE
	}

	partners, total, err := datastore.GetPartnersPaging(ctx, service.postgresDB, perPage, (page-1)*perPage)
	if err != nil {
		return nil, errorx.Wrap(fmt.Errorf("list partners: %w", err), errorx.Database)
	}

	return &models.PartnerPage{
		Partners: partners,
		Page:     page,
		PerPage:  perPage,
		Total:    total,
	}, nil
}

func (service *ServicePartner) GetPartner(ctx context.Context, id int64) (*models.Partner, error) {
	callback := func() (*models.Partner, error) {
		partner, err := datastore.FindPartnerByID(ctx, service.postgresDB, id)
		if errorx.IsNoRows(err) {
			return nil, errPartnerNotFound()
		}
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Database)
		}
		return partner, nil
	}

	return caching.UseCache(ctx, service.cache, DBKeyPartner(id), CACHE_TTL_5_MINS, callback)
}

func (service *ServicePartner) CreatePartner(ctx context.Context, in *PartnerInput) (*models.Partner, error) {
	now := time.Now().UTC()
	partner := &models.Partner{CreatedAt: now, UpdatedAt: now}
	in.Apply(partner)

	partner, err := datastore.CreatePartner(ctx, service.postgresDB, partner)
	if err != nil {
		return nil, errorx.Wrap(fmt.Errorf("create partner: %w", err), errorx.Database)
	}
	return partner, nil
}

// UpdatePartner writes the fields carried by in onto an existing partner.
func (service *ServicePartner) UpdatePartner(ctx context.Context, partner *models.Partner, in *PartnerInput) (*models.Partner, error) {
	columns := in.Apply(partner)
	partner.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")

	updated, err := datastore.EditPartner(ctx, service.postgresDB, partner, columns...)
	if err != nil {
		return nil, errorx.Wrap(fmt.Errorf("update partner %d: %w", partner.ID, err), errorx.Database)
	}

	_ = service.cache.Delete(ctx, DBKeyPartner(updated.ID))
	return updated, nil
}

func (service *ServicePartner) DeletePartner(ctx context.Context, id int64) error {
	err := datastore.DeletePartner(ctx, service.postgresDB, id)
	if errorx.IsNoRows(err) {
		return errPartnerNotFound()
	}
	if err != nil {
		return errorx.Wrap(fmt.Errorf("delete partner %d: %w", id, err), errorx.Database)
	}

	_ = service.cache.Delete(ctx, DBKeyPartner(id))
	return nil
}
