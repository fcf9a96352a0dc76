// Package projectid resolves the Google Cloud project id a process runs against.
package projectid

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
)

// ErrNotFound is returned when no provider could determine a project id.
var ErrNotFound = errors.New("project id could not be determined")

// EnvVars are checked in order by Env.
var EnvVars = []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT_ID"}

// Provider supplies a project id.
type Provider interface {
	ProjectID(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) ProjectID(ctx context.Context) (string, error) { return f(ctx) }

// Static returns id, or ErrNotFound when id is empty.
func Static(id string) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		if id == "" {
			return "", ErrNotFound
		}
		return id, nil
	})
}

// Env reads the first non-empty variable in EnvVars.
func Env() Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		for _, key := range EnvVars {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				return v, nil
			}
		}
		return "", ErrNotFound
	})
}

// DefaultCredentials reads the project id attached to the application default credentials.
func DefaultCredentials() Provider {
	return ProviderFunc(func(ctx context.Context) (string, error) {
		creds, err := google.FindDefaultCredentials(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		if creds.ProjectID == "" {
			return "", ErrNotFound
		}
		return creds.ProjectID, nil
	})
}

// Chain returns the first id any provider resolves. Errors other than
// ErrNotFound stop the chain.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(ctx context.Context) (string, error) {
		for _, p := range providers {
			id, err := p.ProjectID(ctx)
			if err == nil && id != "" {
				return id, nil
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return "", err
			}
		}
		return "", ErrNotFound
	})
}

// Default checks the environment first and then the default credentials.
func Default() Provider {
	return Chain(Env(), DefaultCredentials())
}
