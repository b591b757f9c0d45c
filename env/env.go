// Package env resolves the application's environment variables once at
// startup.
//
// Public values (prefixed NEXT_PUBLIC_) are safe to expose to client code.
// Server-only values are declared separately and refuse to be read when
// the process runs as a client. Only enumerated names are ever read, an
// empty value counts as unset, and any invalid value fails the whole
// resolution: no partially valid [Env] is ever returned.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	goenv "go-simpler.org/env"
)

// PublicPrefix marks variables that may be exposed to client code.
const PublicPrefix = "NEXT_PUBLIC_"

var (
	// ErrServerOnly is returned when server-only values are requested by
	// code running on the client runtime.
	ErrServerOnly = errors.New("server-only environment accessed on the client")

	// ErrUndeclared is returned for names that were never declared.
	ErrUndeclared = errors.New("environment variable not declared")
)

// Public holds the client-exposed configuration.
type Public struct {
	APIURL     string `env:"NEXT_PUBLIC_API_URL" validate:"omitempty,url"`
	AppName    string `env:"NEXT_PUBLIC_APP_NAME" default:"Next.js Starter"`
	AppVersion string `env:"NEXT_PUBLIC_APP_VERSION" default:"1.0.0"`
}

// publicVars enumerates every name read into [Public]. Nothing else is
// looked up for the public scope.
var publicVars = []string{
	"NEXT_PUBLIC_API_URL",
	"NEXT_PUBLIC_APP_NAME",
	"NEXT_PUBLIC_APP_VERSION",
}

// Runtime says where the resolving code runs.
type Runtime int

const (
	RuntimeServer Runtime = iota
	RuntimeClient
)

func (r Runtime) String() string {
	if r == RuntimeClient {
		return "client"
	}
	return "server"
}

// Var declares one server-only variable.
type Var struct {
	Name     string
	Default  string
	Required bool
}

// ConfigError is a fatal startup error: a declared variable is missing or
// invalid, or the declarations themselves are inconsistent.
type ConfigError struct {
	Name string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid environment: %v", e.Err)
	}
	return fmt.Sprintf("invalid environment variable %s: %v", e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Env is the resolved configuration.
type Env struct {
	runtime Runtime
	public  Public
	server  *ServerEnv
}

// Public returns the client-exposed values.
func (e *Env) Public() Public {
	return e.public
}

// Runtime returns the runtime the environment was resolved for.
func (e *Env) Runtime() Runtime {
	return e.runtime
}

// Server returns the server-only values, or [ErrServerOnly] on the client
// runtime.
func (e *Env) Server() (*ServerEnv, error) {
	if e.runtime == RuntimeClient {
		return nil, ErrServerOnly
	}
	return e.server, nil
}

// ServerEnv holds the resolved server-only values.
type ServerEnv struct {
	values map[string]string
}

// Get returns the value of a declared server variable. Optional variables
// without a default resolve to "".
func (s *ServerEnv) Get(name string) (string, error) {
	v, ok := s.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndeclared, name)
	}
	return v, nil
}

// Names returns the declared server variable names in sorted order.
func (s *ServerEnv) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type options struct {
	source     Source
	dotenv     []string
	serverVars []Var
	runtime    Runtime
}

type Option func(*options)

// WithSource replaces the process environment as the source of values.
func WithSource(src Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithDotenv layers the given .env files under the source. Values already
// present in the source win. Missing files are skipped.
func WithDotenv(files ...string) Option {
	return func(o *options) {
		o.dotenv = append(o.dotenv, files...)
	}
}

// WithServerVars declares server-only variables. The default set is empty.
func WithServerVars(vars ...Var) Option {
	return func(o *options) {
		o.serverVars = append(o.serverVars, vars...)
	}
}

func WithRuntime(rt Runtime) Option {
	return func(o *options) {
		o.runtime = rt
	}
}

// Resolve reads, defaults and validates every declared variable.
func Resolve(opts ...Option) (*Env, error) {
	o := &options{source: OS(), runtime: RuntimeServer}
	for _, opt := range opts {
		opt(o)
	}

	src, err := withDotenv(o.source, o.dotenv)
	if err != nil {
		return nil, err
	}
	src = nonEmpty{src}

	public, err := resolvePublic(src)
	if err != nil {
		return nil, err
	}

	// Server-only names are never read on the client runtime.
	if o.runtime == RuntimeClient {
		return &Env{runtime: o.runtime, public: public}, nil
	}

	server, err := resolveServer(src, o.serverVars)
	if err != nil {
		return nil, err
	}

	return &Env{runtime: o.runtime, public: public, server: server}, nil
}

func resolvePublic(src Source) (Public, error) {
	var pub Public

	if err := goenv.Load(&pub, &goenv.Options{Source: only(src, publicVars)}); err != nil {
		return Public{}, &ConfigError{Err: err}
	}

	if err := publicValidator.Struct(pub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Public{}, &ConfigError{
				Name: fe.Field(),
				Err:  fmt.Errorf("must be a valid %s, got %q", fe.Tag(), fe.Value()),
			}
		}
		return Public{}, &ConfigError{Err: err}
	}

	return pub, nil
}

func resolveServer(src Source, vars []Var) (*ServerEnv, error) {
	values := make(map[string]string, len(vars))

	for _, v := range vars {
		if strings.TrimSpace(v.Name) == "" {
			return nil, &ConfigError{Err: errors.New("server variable with empty name")}
		}

		if strings.HasPrefix(v.Name, PublicPrefix) {
			return nil, &ConfigError{Name: v.Name, Err: fmt.Errorf("server-only variables must not use the %s prefix", PublicPrefix)}
		}

		if _, dup := values[v.Name]; dup {
			return nil, &ConfigError{Name: v.Name, Err: errors.New("declared twice")}
		}

		value, ok := src.LookupEnv(v.Name)
		switch {
		case ok:
		case v.Default != "":
			value = v.Default
		case v.Required:
			return nil, &ConfigError{Name: v.Name, Err: errors.New("is required")}
		}

		values[v.Name] = value
	}

	return &ServerEnv{values: values}, nil
}

var publicValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the variable name instead of the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		return name
	})
	return v
}()

func withDotenv(src Source, files []string) (Source, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) == 0 {
		return src, nil
	}

	values, err := godotenv.Read(existing...)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("read dotenv files: %w", err)}
	}

	return layered{src, Map(values)}, nil
}
