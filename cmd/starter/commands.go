package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/peteraglen/starter-api-client/service"
)

type command struct {
	usage     string
	help      string
	run       func(ctx context.Context, a *app, args []string) error
	// hintLogin prints the login hint when the API answers 401.
	hintLogin bool
}

var commands = map[string]command{
	"me": {
		help:      "show the logged-in user",
		run:       runMe,
		hintLogin: true,
	},
	"users": {
		usage:     usageUsers,
		help:      "list users",
		run:       runUsers,
		hintLogin: true,
	},
	"user": {
		usage:     usageUser,
		help:      "show one user",
		run:       runUser,
		hintLogin: true,
	},
	"login": {
		usage: usageLogin,
		help:  "log in and keep the token",
		run:   runLogin,
	},
	"register": {
		usage: usageRegister,
		help:  "create an account and keep the token",
		run:   runRegister,
	},
	"logout": {
		help: "end the session and forget the token",
		run:  runLogout,
	},
	"refresh": {
		usage:     usageRefresh,
		help:      "replace the kept token with a fresh one",
		run:       runRefresh,
		hintLogin: true,
	},
	"env": {
		help: "show the resolved environment",
	},
}

const (
	usageUsers    = "[-page N] [-page-size N]"
	usageUser     = "<id>"
	usageLogin    = "<email> <password>"
	usageRegister = "<name> <email> <password>"
	usageRefresh  = "[refresh-token]"
)

func usageError(name, usage string) error {
	return fmt.Errorf("%w: %s", errUsage, strings.TrimSpace("starter "+name+" "+usage))
}

func expectArgs(name, usage string, args []string, n int) error {
	if len(args) != n {
		return usageError(name, usage)
	}
	return nil
}

func runMe(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("me", "", args, 0); err != nil {
		return err
	}

	me, err := a.svc.Users.Me(ctx)
	if err != nil {
		return err
	}

	return writeJSON(a.stdout, me)
}

func runUsers(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", 0, "page number, starting at 1")
	pageSize := fs.Int("page-size", 0, "users per page")

	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *page < 0 || *pageSize < 0 {
		return usageError("users", usageUsers)
	}

	users, err := a.svc.Users.List(ctx, service.ListUsersParams{Page: *page, PageSize: *pageSize})
	if err != nil {
		return err
	}

	return writeJSON(a.stdout, users)
}

func runUser(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("user", usageUser, args, 1); err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return usageError("user", usageUser+" (id must be a number)")
	}

	u, err := a.svc.Users.Get(ctx, id)
	if err != nil {
		return err
	}

	return writeJSON(a.stdout, u)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("login", usageLogin, args, 2); err != nil {
		return err
	}

	auth, err := a.svc.Auth.Login(ctx, service.LoginRequest{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}

	return writeJSON(a.stdout, auth.User)
}

func runRegister(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("register", usageRegister, args, 3); err != nil {
		return err
	}

	auth, err := a.svc.Auth.Register(ctx, service.RegisterRequest{Name: args[0], Email: args[1], Password: args[2]})
	if err != nil {
		return err
	}

	return writeJSON(a.stdout, auth.User)
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("logout", "", args, 0); err != nil {
		return err
	}

	if err := a.svc.Auth.Logout(ctx); err != nil {
		return err
	}

	_, err := fmt.Fprintln(a.stdout, "Logged out")
	return err
}

func runRefresh(ctx context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return usageError("refresh", usageRefresh)
	}

	var refreshToken string
	if len(args) == 1 {
		refreshToken = args[0]
	}

	auth, err := a.svc.Auth.Refresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	return writeJSON(a.stdout, auth.User)
}

// printEnv shows public values and the names of the server variables.
// Server values are left out since they may hold credentials.
func printEnv(w io.Writer, cfg *config) error {
	names := make([]string, 0, 4)
	for _, v := range serverVars() {
		names = append(names, v.Name)
	}
	sort.Strings(names)

	return writeJSON(w, map[string]any{
		"runtime": "server",
		"public": map[string]string{
			"NEXT_PUBLIC_API_URL":     cfg.public.APIURL,
			"NEXT_PUBLIC_APP_NAME":    cfg.public.AppName,
			"NEXT_PUBLIC_APP_VERSION": cfg.public.AppVersion,
		},
		"server": names,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
