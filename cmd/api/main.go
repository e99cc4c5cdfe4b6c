package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"partnerhub/internal/api/handler"
	"partnerhub/internal/datastore"
	"partnerhub/internal/interfaces"
	"partnerhub/internal/pkg/caching"
	"partnerhub/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	vs, err := env.EnvsRequired(
		"DB_DSN",
	)
	if err != nil {
		log.Fatal(err)
	}

	container := NewContainer(vs)

	app := &cli.App{
		Name: "api",
		Commands: []*cli.Command{
			commandServer(container),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServer(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
		},
		Action: func(c *cli.Context) error {
			vs := do.MustInvokeNamed[map[string]string](container, "envs")

			rateLimit := 0
			if vs["REDIS_LIMITER"] != "" {
				rateLimit = services.API_RATE_LIMIT_PER_MINUTE
				if v, err := strconv.Atoi(vs["API_RATE_LIMIT_PER_MINUTE"]); err == nil {
					rateLimit = v
				}
			}

			router, err := handler.New(&handler.Config{
				Container:          container,
				Mode:               vs["API_MODE"],
				Origins:            strings.Split(vs["API_ORIGINS"], ","),
				RateLimitPerMinute: rateLimit,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    c.String("addr"),
				Handler: router,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				log.Printf("ListenAndServe: %s (%s)\n", c.String("addr"), vs["API_MODE"])
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				return srv.Shutdown(context.TODO())
			})

			return errWg.Wait()
		},
	}
}

func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	for _, key := range []string{"DB_PASSWORD", "API_MODE", "API_ORIGINS", "REDIS_CACHE", "REDIS_LIMITER", "API_RATE_LIMIT_PER_MINUTE"} {
		vs[key] = os.Getenv(key)
	}

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = services.SERVER_MODE_PRODUCTION
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return datastore.NewPostgres(vs["DB_DSN"], vs["DB_PASSWORD"]), nil
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		if vs["REDIS_CACHE"] == "" {
			return nil, nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: vs["REDIS_CACHE"],
		})
	})

	do.ProvideNamed(injector, "redis-limiter", func(i *do.Injector) (*redis.Client, error) {
		return db.InitRedis(&db.RedisConfig{
			URL: vs["REDIS_LIMITER"],
		})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		// no redis configured: process local cache only
		return caching.NewCacheRedis(dbRedis, dbRedis == nil)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[*redis.Client](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	services.Register(injector)

	return injector
}
