package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"partnerhub/internal/datastore"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
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
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the users, personal_access_tokens and partners tables",
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired(
				"DB_DSN",
			)
			if err != nil {
				return err
			}

			db := datastore.NewPostgres(vs["DB_DSN"], os.Getenv("DB_PASSWORD"))
			defer db.Close()

			if err := datastore.Migrate(context.Background(), db); err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, "Migration success")
			return nil
		},
	}
}
