package services

import (
	"github.com/samber/do"
)

// Register provides every service lazily. The injector must already hold a
// *bun.DB and a caching.Cache.
func Register(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ServiceUser, error) {
		return NewServiceUser(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceToken, error) {
		return NewServiceToken(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServicePartner, error) {
		return NewServicePartner(i)
	})
}
