// Package cli implements the library command line: login, logout and the
// books subcommands. Every command talks to the API through the client SDK
// and keeps its credential in an encrypted local file.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mrlokans/library/internal/client"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/credentials"
)

// Env is what every command needs to reach the API.
type Env struct {
	Config     config.Client
	Out        io.Writer
	HTTPClient *http.Client // optional
}

func NewEnv(cfg config.Client) *Env {
	return &Env{Config: cfg, Out: os.Stdout}
}

// connect opens the credential file and builds a client on top of it.
// The returned close function releases the file.
func (e *Env) connect() (*client.Client, func(), error) {
	store, err := credentials.NewFileStore(credentials.FileConfig{
		DatabasePath:  e.Config.CredentialsPath,
		EncryptionKey: e.Config.CredentialsKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open credentials: %w", err)
	}

	opts := []client.Option{client.WithCredentials(store)}
	if e.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(e.HTTPClient))
	}
	c, err := client.New(e.Config.APIURL, opts...)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return c, func() { store.Close() }, nil
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

var errNotLoggedIn = errors.New("not logged in or session expired, run 'library login' first")

// explain turns an API failure into a message fit for stderr.
func explain(err error) error {
	if client.IsUnauthorized(err) {
		return errNotLoggedIn
	}
	return err
}
