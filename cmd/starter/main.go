// Command starter talks to the API from a terminal. It keeps the auth
// token in a file, or in Redis when REDIS_URL is set.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/peteraglen/starter-api-client/env"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env.OS(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
