package services

import (
	"testing"

	"partnerhub/internal/datastore/dbtest"
	"partnerhub/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestContainer(t *testing.T) *do.Injector {
	t.Helper()

	injector := do.New()
	db := dbtest.New(t)
	do.ProvideValue(injector, db)

	cache, err := caching.NewCacheRedis(nil, true)
	require.NoError(t, err)
	do.ProvideValue[caching.Cache](injector, cache)

	Register(injector)
	return injector
}

func testDB(t *testing.T, injector *do.Injector) *bun.DB {
	return do.MustInvoke[*bun.DB](injector)
}
