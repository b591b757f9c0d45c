package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	client "github.com/peteraglen/starter-api-client"
	"github.com/peteraglen/starter-api-client/env"
	"github.com/peteraglen/starter-api-client/internal/logging"
	"github.com/peteraglen/starter-api-client/service"
	"github.com/peteraglen/starter-api-client/token"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

// app is what a command runs against.
type app struct {
	cfg    *config
	svc    *service.Service
	stdout io.Writer
}

func run(ctx context.Context, args []string, src env.Source, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("starter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs) }

	lang := fs.String("lang", "en", "value sent in the "+service.LanguageHeader+" header")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if fs.NArg() == 0 {
		printUsage(fs)
		return exitUsage
	}

	name, cmdArgs := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		printUsage(fs)
		return exitUsage
	}

	cfg, err := loadConfig(src)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger := logging.New(stderr, cfg.logLevel, cfg.logFormat).With("command", name)

	if name == "env" {
		return finish(logger, stderr, printEnv(stdout, cfg))
	}

	if err := cfg.requireAPI(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open token store", "error", err)
		return exitFailure
	}
	defer closeStore()

	opts := []client.Option{
		client.WithTimeout(*timeout),
		client.WithRequestLogger(client.NewSlogLogger(logger)),
		client.WithUserAgent("starter/"+cfg.public.AppVersion),
		client.WithTokenStore(store),
	}
	if cmd.hintLogin {
		opts = append(opts, client.WithRedirector(client.RedirectFunc(func(_ context.Context, location string) {
			fmt.Fprintf(stderr, "Not logged in (%s). Run: starter login <email> <password>\n", location)
		})))
	}

	c := client.New(cfg.public.APIURL, opts...)
	if err := c.Connect(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer c.Close()

	a := &app{
		cfg:    cfg,
		svc:    service.New(c, store, service.WithLanguage(*lang)),
		stdout: stdout,
	}

	return finish(logger, stderr, cmd.run(ctx, a, cmdArgs))
}

func finish(logger *slog.Logger, stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return exitUsage
	case client.IsCanceled(err):
		logger.Debug("Command canceled", "error", err)
		return exitFailure
	default:
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
}

// openStore returns the Redis store when REDIS_URL is set, the file store
// otherwise.
func openStore(ctx context.Context, cfg *config) (token.Store, func(), error) {
	if cfg.redisURL == "" {
		return token.NewFileStore(cfg.tokenFile, nil), func() {}, nil
	}

	store, err := token.NewRedisStoreFromURL(ctx, cfg.redisURL, token.DefaultKey)
	if err != nil {
		return nil, nil, err
	}

	return store, func() { _ = store.Close() }, nil
}

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage: starter [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-44s %s\n", strings.TrimSpace(name+" "+commands[name].usage), commands[name].help)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}
