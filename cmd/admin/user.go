package main

import (
	"fmt"

	"partnerhub/internal/services"

	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func commandCreateUser(opts *commandOptions) *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "create a new user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "the name of the user"},
			&cli.StringFlag{Name: "email", Usage: "the email address of the user"},
			&cli.StringFlag{Name: "password", Usage: "the password for the user"},
			flagNoInteraction(),
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			users, err := do.Invoke[*services.ServiceUser](opts.container)
			if err != nil {
				return err
			}
			interactive := opts.isInteractive(c.Bool("no-interaction"))

			name := c.String("name")
			if name == "" {
				if !interactive {
					return requiredOption("name")
				}
				name, err = opts.prompter.Input("What is the user's name?", "", required("name"))
				if err != nil {
					return err
				}
			}

			email := c.String("email")
			if email == "" {
				if !interactive {
					return requiredOption("email")
				}
				email, err = opts.prompter.Input("What is the user's email?", "", func(v string) error {
					return users.ValidateEmail(ctx, v)
				})
				if err != nil {
					return err
				}
			} else if err := users.ValidateEmail(ctx, email); err != nil {
				return err
			}

			password := c.String("password")
			if password == "" {
				if !interactive {
					return requiredOption("password")
				}
				password, err = opts.prompter.Password("What is the user's password?", required("password"))
				if err != nil {
					return err
				}
			}

			user, err := users.CreateUser(ctx, name, email, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "User [%s] created successfully with ID: %d\n", user.Name, user.ID)
			return nil
		},
	}
}
