package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/wellkept/internal/api"
	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/keyring"
	"github.com/julianstephens/wellkept/internal/logger"
)

type ServeCmd struct {
	Listen string `help:"Address for the HTTP API." default:"${api_listen}" env:"WELLKEPT_API_LISTEN"`
	Token  string `help:"Bearer token required on API requests. Falls back to the api-token stored in the keyring." env:"WELLKEPT_API_TOKEN"`
	NoAuth bool   `help:"Serve without a bearer token."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	token, err := c.resolveToken()
	if err != nil {
		return err
	}
	if token == "" {
		ctx.Println(cli.WarningStyle.Render("⚠️  Serving without authentication"))
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving API for %s on http://%s\n", ctx.Owner, c.Listen)
	return api.NewServer(ctx.Service, ctx.Owner, token).Run(sigCtx, c.Listen)
}

func (c *ServeCmd) resolveToken() (string, error) {
	if c.NoAuth {
		return "", nil
	}
	if c.Token != "" {
		return c.Token, nil
	}

	token, err := keyring.Get(keyring.APIToken)
	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, keyring.ErrNotFound):
		return "", errors.New("no API token configured: pass --token, set WELLKEPT_API_TOKEN, run 'wellkept keyring set --secret api-token <token>', or use --no-auth")
	default:
		logger.Warn("Keyring lookup failed", "error", err)
		return "", fmt.Errorf("failed to read API token from keyring: %w", err)
	}
}
