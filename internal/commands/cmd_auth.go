package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/roomchat/internal/auth"
	"github.com/hay-kot/roomchat/internal/printer"
	"github.com/hay-kot/roomchat/internal/styles"
)

type AuthCmd struct {
	flags *Flags

	name     string
	username string
	email    string
	password string
	jsonOut  bool
}

// NewAuthCmd creates the account commands.
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds signup, signin, signout and whoami to the application.
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "signup",
			Usage:     "Create an account and sign in",
			UsageText: "roomchat signup [--name NAME] [--username USER] [--email EMAIL] [--password PASS]",
			Description: `Creates a local account and starts a session.

Any flag left out is prompted for interactively.`,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Usage: "display name", Destination: &cmd.name},
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "username", Destination: &cmd.username},
				emailFlag(&cmd.email),
				passwordFlag(&cmd.password),
			},
			Action: cmd.runSignUp,
		},
		&cli.Command{
			Name:      "signin",
			Usage:     "Sign in to an existing account",
			UsageText: "roomchat signin [--email EMAIL] [--password PASS]",
			Flags: []cli.Flag{
				emailFlag(&cmd.email),
				passwordFlag(&cmd.password),
			},
			Action: cmd.runSignIn,
		},
		&cli.Command{
			Name:   "signout",
			Usage:  "End the current session",
			Action: cmd.runSignOut,
		},
		&cli.Command{
			Name:  "whoami",
			Usage: "Show the signed-in user",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOut},
			},
			Action: cmd.runWhoami,
		},
	)

	return app
}

func emailFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "email",
		Aliases:     []string{"e"},
		Usage:       "account email",
		Sources:     cli.EnvVars("ROOMCHAT_EMAIL"),
		Destination: dest,
	}
}

func passwordFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "password",
		Aliases:     []string{"p"},
		Usage:       "account password",
		Sources:     cli.EnvVars("ROOMCHAT_PASSWORD"),
		Destination: dest,
	}
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// promptMissing asks for every field whose value is still empty.
func promptMissing(fields ...promptField) error {
	var inputs []huh.Field
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		input := huh.NewInput().
			Title(f.title).
			Value(f.value)
		if f.secret {
			input.EchoMode(huh.EchoModePassword)
		}
		if f.required {
			input.Validate(required(f.title))
		}
		inputs = append(inputs, input)
	}

	if len(inputs) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(inputs...)).WithTheme(styles.FormTheme())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

type promptField struct {
	title    string
	value    *string
	secret   bool
	required bool
}

func (cmd *AuthCmd) runSignUp(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	err := promptMissing(
		promptField{title: "Name", value: &cmd.name},
		promptField{title: "Username", value: &cmd.username},
		promptField{title: "Email", value: &cmd.email, required: true},
		promptField{title: "Password", value: &cmd.password, secret: true, required: true},
	)
	if err != nil {
		return err
	}

	principal, err := cmd.flags.Auth.SignUp(ctx, auth.RegisterRequest{
		Name:     cmd.name,
		Username: cmd.username,
		Email:    cmd.email,
		Password: cmd.password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrAccountExists) {
			return fmt.Errorf("an account with email %s already exists; use 'roomchat signin'", cmd.email)
		}
		return fmt.Errorf("sign up: %w", err)
	}

	cmd.flags.Session.Set(principal)
	p.Success("Signed up as "+principal.DisplayName(), principal.Email)
	return nil
}

func (cmd *AuthCmd) runSignIn(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	err := promptMissing(
		promptField{title: "Email", value: &cmd.email, required: true},
		promptField{title: "Password", value: &cmd.password, secret: true, required: true},
	)
	if err != nil {
		return err
	}

	principal, err := cmd.flags.Auth.SignIn(ctx, cmd.email, cmd.password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	cmd.flags.Session.Set(principal)
	p.Successf("Signed in as %s", principal.DisplayName())
	return nil
}

func (cmd *AuthCmd) runSignOut(ctx context.Context, c *cli.Command) error {
	if !cmd.flags.Session.Check(ctx) {
		printer.Ctx(ctx).Warnf("No active session")
		return nil
	}
	if err := cmd.flags.Auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	cmd.flags.Session.Clear()
	printer.Ctx(ctx).Successf("Signed out")
	return nil
}

func (cmd *AuthCmd) runWhoami(ctx context.Context, c *cli.Command) error {
	session := cmd.flags.Session
	if !session.Check(ctx) {
		return errNotSignedIn
	}
	user, _ := session.User()

	if cmd.jsonOut {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "%s\n", user.DisplayName())
	printWhoamiField(out, "id", user.ID)
	printWhoamiField(out, "username", user.Username)
	printWhoamiField(out, "email", user.Email)
	printWhoamiField(out, "bio", user.Bio)
	return nil
}

func printWhoamiField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintf(w, "  %-9s %s\n", label+":", value)
}
