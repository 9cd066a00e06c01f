package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pgapigen/pgapigen"
)

// Secret is a configuration value that must never be a hardcoded literal.
// Callers write it as "env:NAME" and Resolve reads the named environment
// variable at generation time; any other form is rejected by validate
// before a single file is emitted.
type Secret string

const envPrefix = "env:"

// validate enforces the env:NAME indirection. An empty Secret is treated
// as "not configured" and is left to the caller to require or not.
func (s Secret) validate() error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(string(s), envPrefix) {
		return fmt.Errorf("must be given as %q, not a literal value", envPrefix+"NAME")
	}
	if strings.TrimPrefix(string(s), envPrefix) == "" {
		return fmt.Errorf("%s must name an environment variable", envPrefix)
	}
	return nil
}

// EnvVar returns the environment variable name this secret indirects
// through, for diagnostics.
func (s Secret) EnvVar() string {
	return strings.TrimPrefix(string(s), envPrefix)
}

// Resolve reads the secret's value from its named environment variable.
// It fails closed: a configured secret whose environment variable is
// unset or empty is a ConfigError, never a silently-empty value.
func (s Secret) Resolve() (string, error) {
	if s == "" {
		return "", nil
	}
	if err := s.validate(); err != nil {
		return "", pgapigen.NewConfigError("secret", s, err.Error())
	}
	name := s.EnvVar()
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", pgapigen.NewConfigError("secret", s, fmt.Sprintf("environment variable %s is not set", name))
	}
	return v, nil
}
