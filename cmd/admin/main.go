package main

import (
	"fmt"
	"log"
	"os"

	"partnerhub/internal/datastore"
	"partnerhub/internal/pkg/caching"
	"partnerhub/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
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
	app := newApp(container, huhPrompter{}, isInteractive())

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(container *do.Injector, prompter Prompter, interactive bool) *cli.App {
	opts := &commandOptions{container, prompter, interactive}

	return &cli.App{
		Name:  "admin",
		Usage: "manage API users and their tokens",
		Commands: []*cli.Command{
			commandCreateUser(opts),
			commandGiveUserToken(opts),
		},
	}
}

type commandOptions struct {
	container   *do.Injector
	prompter    Prompter
	interactive bool
}

// isInteractive reports whether missing values may be prompted for.
func (opts *commandOptions) isInteractive(noInteraction bool) bool {
	return opts.interactive && !noInteraction
}

func flagNoInteraction() cli.Flag {
	return &cli.BoolFlag{
		Name:    "no-interaction",
		Aliases: []string{"n"},
		Usage:   "never prompt, fail on missing options",
	}
}

func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return datastore.NewPostgres(vs["DB_DSN"], os.Getenv("DB_PASSWORD")), nil
	})

	// the admin commands never read partners
	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		return caching.NewCacheRedis(nil, true)
	})

	services.Register(injector)

	return injector
}
