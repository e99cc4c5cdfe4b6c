package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"partnerhub/internal/models"
	"partnerhub/internal/services"

	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

const detailWidth = 20

func commandGiveUserToken(opts *commandOptions) *cli.Command {
	return &cli.Command{
		Name:      "give-user-token",
		Usage:     "give a user an API token",
		ArgsUsage: "<user>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "abilities", Usage: "the abilities to grant to the token"},
			&cli.StringFlag{Name: "name", Usage: "the name of the token"},
			&cli.DurationFlag{Name: "expires-in", Usage: "token lifetime, 0 never expires"},
			flagNoInteraction(),
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			flags, err := parseCommandFlags(c)
			if err != nil {
				return err
			}
			switch args := flags.Args(); {
			case len(args) < 1:
				return errors.New(`Not enough arguments (missing: "user").`)
			case len(args) > 1:
				return errors.New(`Too many arguments, expected arguments "user".`)
			}
			userArg := flags.Args()[0]

			users, err := do.Invoke[*services.ServiceUser](opts.container)
			if err != nil {
				return err
			}
			tokens, err := do.Invoke[*services.ServiceToken](opts.container)
			if err != nil {
				return err
			}
			interactive := opts.isInteractive(flags.Bool("no-interaction", "n"))

			userID, err := strconv.ParseInt(userArg, 10, 64)
			if err != nil {
				return fmt.Errorf("User with ID %s not found.", userArg)
			}
			user, err := users.FindUserByID(ctx, userID)
			if errors.Is(err, services.ErrUserNotFound) {
				return fmt.Errorf("User with ID %s not found.", userArg)
			}
			if err != nil {
				return err
			}

			abilities := flags.StringSlice("abilities")
			if len(abilities) == 0 {
				if !interactive {
					return requiredOption("abilities")
				}
				abilities, err = opts.prompter.MultiSelect("What abilities should this token have?", models.Abilities, func(v []string) error {
					if len(v) == 0 {
						return errors.New("Select at least one ability.")
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			if err := services.ValidateAbilities(abilities); err != nil {
				return err
			}

			name := flags.String("name")
			if name == "" {
				name = services.DEFAULT_TOKEN_NAME
				if interactive {
					name, err = opts.prompter.Input("What should this token be named?", services.DEFAULT_TOKEN_NAME, required("name"))
					if err != nil {
						return err
					}
				}
			}

			var expiresAt *time.Time
			if d := flags.Duration("expires-in"); d > 0 {
				t := time.Now().Add(d).UTC()
				expiresAt = &t
			}

			_, plainText, err := tokens.CreateToken(ctx, user, name, abilities, expiresAt)
			if err != nil {
				return err
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Token created successfully for user [%s]\n", user.Name)
			fmt.Fprintln(w)
			twoColumnDetail(w, "Token Name", name)
			twoColumnDetail(w, "Abilities", strings.Join(abilities, ", "))
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Please save this token - it will not be shown again:")
			fmt.Fprintln(w, plainText)
			return nil
		},
	}
}

func twoColumnDetail(w io.Writer, label, value string) {
	dots := detailWidth - len(label)
	if dots < 1 {
		dots = 1
	}
	fmt.Fprintf(w, "  %s %s %s\n", label, strings.Repeat(".", dots), value)
}
