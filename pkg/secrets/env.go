package secrets

import (
	"context"
	"fmt"
	"os"
)

// Env reads the key from an environment variable.
type Env struct {
	// Var is the environment variable name. Default: EnvVar.
	Var string
}

// NewEnv creates an environment source. An empty envVar selects EnvVar.
func NewEnv(envVar string) *Env {
	if envVar == "" {
		envVar = EnvVar
	}
	return &Env{Var: envVar}
}

// APIKey returns the variable's value.
func (e *Env) APIKey(ctx context.Context) (string, error) {
	value := os.Getenv(e.Var)
	if value == "" {
		return "", fmt.Errorf("environment variable %s is not set", e.Var)
	}
	return value, nil
}

// Name returns the source name.
func (e *Env) Name() string {
	return "env"
}
