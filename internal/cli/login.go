package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/library/internal/client"
)

type LoginCommand struct {
	env      *Env
	Username string
	Password string
	Register bool
}

func NewLoginCommand(env *Env) *LoginCommand {
	return &LoginCommand{env: env}
}

func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "user", "", "Username (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (required)")
	fs.BoolVar(&cmd.Register, "register", false, "Create the account before logging in")
	fs.StringVar(&cmd.env.Config.APIURL, "api", cmd.env.Config.APIURL, "Base URL of the library API")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login -user <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Log in and store the token in %s.\n\n", cmd.env.Config.CredentialsPath)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -user not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	return nil
}

func (cmd *LoginCommand) Run(ctx context.Context) error {
	c, closeStore, err := cmd.env.connect()
	if err != nil {
		return err
	}
	defer closeStore()

	if cmd.Register {
		user, err := c.Auth().Register(ctx, cmd.Username, cmd.Password)
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		cmd.env.printf("Registered %s (id %d)\n", user.Username, user.ID)
	}

	result, err := c.Auth().Login(ctx, cmd.Username, cmd.Password)
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("login: invalid username or password")
		}
		return fmt.Errorf("login: %w", err)
	}

	cmd.env.printf("Logged in as %s, token valid until %s\n",
		result.User.Username, result.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

type LogoutCommand struct {
	env *Env
}

func NewLogoutCommand(env *Env) *LogoutCommand {
	return &LogoutCommand{env: env}
}

func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.StringVar(&cmd.env.Config.APIURL, "api", cmd.env.Config.APIURL, "Base URL of the library API")
	return fs.Parse(args)
}

func (cmd *LogoutCommand) Run(ctx context.Context) error {
	c, closeStore, err := cmd.env.connect()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := c.Auth().Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	cmd.env.printf("Logged out\n")
	return nil
}
