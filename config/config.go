// Package config holds the Generation Driver's input configuration, built
// through a functional-options constructor in the same style as
// compiler/gen.Option: each With* function validates its own argument and
// returns a ConfigError immediately rather than deferring validation to a
// later pass.
package config

import (
	"github.com/pgapigen/pgapigen"
)

// OutDir is either a single shared root (Client empty) or a pair of
// separate server/client roots, per §6.6.
type OutDir struct {
	Server string
	Client string
}

// Single reports whether outDir was configured as one shared path.
func (o OutDir) Single() bool { return o.Client == "" }

// ClientDir returns the effective client output root: the configured
// Client root, or "<Server>/sdk" when a single shared path was given.
func (o OutDir) ClientDir() string {
	if !o.Single() {
		return o.Client
	}
	return o.Server + "/sdk"
}

// DateType records the configured representation of timestamp/date
// columns ("date" or "string"). The emitter does not read it: generated
// entity and client types always use time.Time for these columns.
type DateType string

const (
	DateTypeNative DateType = "date"
	DateTypeString DateType = "string"
)

// JWTService is one issuer/secret pair of the auth configuration.
type JWTService struct {
	Issuer string
	Secret Secret
}

// Auth holds the auth settings. The emitter uses only PullToken, which
// guards the generated SDK pull endpoints; APIKeys, APIKeyHeader and JWT
// are validated but no auth middleware is generated from them.
type Auth struct {
	APIKeys      []Secret
	APIKeyHeader string
	JWT          struct {
		Services []JWTService
		Audience string
	}
	PullToken Secret
}

// Tests records the test-generation settings. The emitter does not read
// it and generates no test files.
type Tests struct {
	Generate  bool
	Output    string
	Framework string // "testify", matching this module's own test style
}

// Config is the fully-validated input to the Generation Driver.
type Config struct {
	ConnectionString    Secret
	Schema              string
	OutDir              OutDir
	SoftDeleteColumn    string
	IncludeMethodsDepth int
	Auth                Auth
	DateType            DateType
	Tests               Tests
	OnRequestHookImport string // import path of the user-supplied onRequest hook, if any
}

// Option configures a Config. Each Option validates its own input and
// returns a *pgapigen.ConfigError on failure.
type Option func(*Config) error

// New builds a Config from opts, applying defaults for anything left
// unset, then validating cross-field invariants.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		Schema:              "public",
		IncludeMethodsDepth: 3,
		DateType:            DateTypeNative,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.ConnectionString == "" {
		return nil, pgapigen.NewConfigError("connectionString", nil, "connectionString is required")
	}
	if c.OutDir.Server == "" {
		return nil, pgapigen.NewConfigError("outDir", nil, "outDir is required")
	}
	return c, nil
}

// WithConnectionString sets the database connection string. The value must
// use the env:NAME indirection; a literal value is rejected (the driver layer only ever sees the resolved value; this package stores
// the sentinel form and defers resolution to generation time).
func WithConnectionString(s Secret) Option {
	return func(c *Config) error {
		if s == "" {
			return pgapigen.NewConfigError("connectionString", nil, "must not be empty")
		}
		if err := s.validate(); err != nil {
			return pgapigen.NewConfigError("connectionString", s, err.Error())
		}
		c.ConnectionString = s
		return nil
	}
}

// WithSchema overrides the default "public" schema name.
func WithSchema(schema string) Option {
	return func(c *Config) error {
		if schema == "" {
			return pgapigen.NewConfigError("schema", schema, "must not be empty")
		}
		c.Schema = schema
		return nil
	}
}

// WithOutDir sets a single shared output root; client code is emitted to
// its sdk/ subdirectory.
func WithOutDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return pgapigen.NewConfigError("outDir", nil, "must not be empty")
		}
		c.OutDir = OutDir{Server: dir}
		return nil
	}
}

// WithSplitOutDir sets separate server and client output roots.
func WithSplitOutDir(server, client string) Option {
	return func(c *Config) error {
		if server == "" || client == "" {
			return pgapigen.NewConfigError("outDir", nil, "both server and client roots are required")
		}
		c.OutDir = OutDir{Server: server, Client: client}
		return nil
	}
}

// WithSoftDeleteColumn names the column DELETE sets instead of issuing a
// hard delete, for tables that have it.
func WithSoftDeleteColumn(column string) Option {
	return func(c *Config) error {
		c.SoftDeleteColumn = column
		return nil
	}
}

// WithIncludeMethodsDepth bounds include depth in the generated server:
// include.Parse rejects include chains longer than it, and hydration stops
// at it. The generated client has one ListWith<Rel>/GetByPKWith<Rel> pair
// per direct relation of each table, whatever this depth.
func WithIncludeMethodsDepth(depth int) Option {
	return func(c *Config) error {
		if depth < 1 {
			return pgapigen.NewConfigError("includeMethodsDepth", depth, "must be positive")
		}
		c.IncludeMethodsDepth = depth
		return nil
	}
}

// WithDateType records the date/timestamp representation; see DateType.
func WithDateType(t DateType) Option {
	return func(c *Config) error {
		if t != DateTypeNative && t != DateTypeString {
			return pgapigen.NewConfigError("dateType", t, `must be "date" or "string"`)
		}
		c.DateType = t
		return nil
	}
}

// WithTests records test-generation settings; see Tests.
func WithTests(output, framework string) Option {
	return func(c *Config) error {
		c.Tests = Tests{Generate: true, Output: output, Framework: framework}
		return nil
	}
}

// WithAuth sets the full auth configuration.
func WithAuth(a Auth) Option {
	return func(c *Config) error {
		for _, key := range a.APIKeys {
			if err := key.validate(); err != nil {
				return pgapigen.NewConfigError("auth.apiKeys", key, err.Error())
			}
		}
		for _, svc := range a.JWT.Services {
			if err := svc.Secret.validate(); err != nil {
				return pgapigen.NewConfigError("auth.jwt.services", svc.Issuer, err.Error())
			}
		}
		if a.PullToken != "" {
			if err := a.PullToken.validate(); err != nil {
				return pgapigen.NewConfigError("auth.pullToken", a.PullToken, err.Error())
			}
		}
		c.Auth = a
		return nil
	}
}

// WithOnRequestHook records the import path of a user-supplied
// onRequest(context, connection) hook implementation. The emitter does not
// read it, and generated servers do not call a hook.
func WithOnRequestHook(importPath string) Option {
	return func(c *Config) error {
		c.OnRequestHookImport = importPath
		return nil
	}
}

