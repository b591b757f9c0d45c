package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/peteraglen/starter-api-client/env"
)

const (
	varLogLevel  = "LOG_LEVEL"
	varLogFormat = "LOG_FORMAT"
	varTokenFile = "TOKEN_FILE"
	varRedisURL  = "REDIS_URL"
)

type config struct {
	public    env.Public
	logLevel  string
	logFormat string
	tokenFile string
	redisURL  string
}

func serverVars() []env.Var {
	return []env.Var{
		{Name: varLogLevel, Default: "warn"},
		{Name: varLogFormat, Default: "text"},
		{Name: varTokenFile, Default: defaultTokenFile()},
		{Name: varRedisURL},
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "starter", "token")
}

func loadConfig(src env.Source) (*config, error) {
	resolved, err := env.Resolve(
		env.WithSource(src),
		env.WithDotenv(".env"),
		env.WithRuntime(env.RuntimeServer),
		env.WithServerVars(serverVars()...),
	)
	if err != nil {
		return nil, err
	}

	server, err := resolved.Server()
	if err != nil {
		return nil, err
	}

	cfg := &config{public: resolved.Public()}
	for name, dst := range map[string]*string{
		varLogLevel:  &cfg.logLevel,
		varLogFormat: &cfg.logFormat,
		varTokenFile: &cfg.tokenFile,
		varRedisURL:  &cfg.redisURL,
	} {
		if *dst, err = server.Get(name); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *config) requireAPI() error {
	if c.public.APIURL == "" {
		return &env.ConfigError{Name: "NEXT_PUBLIC_API_URL", Err: errors.New("must be set to reach the API")}
	}
	return nil
}
