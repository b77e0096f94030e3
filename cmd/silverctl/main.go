// silverctl — консольный клиент backend'а. Пара токенов хранится между
// запусками в файле (token_store.kind=file) или в Redis.
//
//	silverctl login -u admin -p secret
//	silverctl whoami
//	silverctl devices list|mine|get ID|delete ID|fuel-types|technology-types
//	silverctl users list [-search s] [-role ADMIN|USER] [-status active|inactive]
//	silverctl users toggle ID
//	silverctl users role ID ADMIN|USER
//	silverctl logout
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Mutombe/silver-carbon/internal/clients"
	"github.com/Mutombe/silver-carbon/internal/config"
	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
	"github.com/Mutombe/silver-carbon/internal/tokenstore"
)

var errUsage = errors.New("usage: silverctl [--config path] [-v] login|logout|whoami|devices|users ...")

func main() {
	var (
		configPath string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&verbose, "v", false, "log outbound requests to stderr")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, configPath, verbose, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "silverctl:", describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, verbose bool, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := tokenstore.New(ctx, cfg.TokenStore)
	if err != nil {
		return err
	}
	defer store.Close()

	cl := clients.New(*cfg, clients.Deps{Store: store, Logger: log})
	cl.Core.OnInvalidate(func(context.Context, error) {
		fmt.Fprintln(os.Stderr, "session expired, run: silverctl login")
	})

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return login(ctx, cl, rest, out)
	case "logout":
		return cl.Auth.Logout(ctx)
	case "whoami":
		info, err := cl.Auth.Session(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, info)
	case "devices":
		return devices(ctx, cl, rest, out)
	case "users":
		return users(ctx, cl, rest, out)
	default:
		return errUsage
	}
}

func login(ctx context.Context, cl *clients.Clients, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", os.Getenv("SILVER_PASSWORD"), "password (default $SILVER_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := cl.Auth.Login(ctx, models.LoginRequest{Username: *username, Password: *password})
	if err != nil {
		return err
	}

	return printJSON(out, res)
}

func devices(ctx context.Context, cl *clients.Clients, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var (
		res any
		err error
	)

	switch args[0] {
	case "list":
		res, err = cl.Devices.List(ctx)
	case "mine":
		res, err = cl.Devices.Mine(ctx)
	case "fuel-types":
		res, err = cl.Devices.FuelTypes(ctx)
	case "technology-types":
		res, err = cl.Devices.TechnologyTypes(ctx)
	case "get", "delete":
		id, perr := argID(args)
		if perr != nil {
			return perr
		}
		if args[0] == "delete" {
			return cl.Devices.Delete(ctx, id)
		}
		res, err = cl.Devices.Get(ctx, id)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	return printJSON(out, res)
}

func users(ctx context.Context, cl *clients.Clients, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("users list", flag.ContinueOnError)
		var f models.UsersFilter
		fs.StringVar(&f.Search, "search", "", "search by username or email")
		fs.StringVar(&f.Role, "role", "", "ADMIN or USER")
		fs.StringVar(&f.Status, "status", "", "active or inactive")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		res, err := cl.Users.List(ctx, f)
		if err != nil {
			return err
		}
		return printJSON(out, res)
	case "toggle":
		id, err := argID(args)
		if err != nil {
			return err
		}

		active, err := cl.Users.ToggleActive(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, models.ToggleActiveResponse{IsActive: active})
	case "role":
		id, err := argID(args)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return errUsage
		}

		role, err := cl.Users.ChangeRole(ctx, id, args[2])
		if err != nil {
			return err
		}
		return printJSON(out, models.ChangeRoleResponse{Role: role})
	default:
		return errUsage
	}
}

func argID(args []string) (int64, error) {
	if len(args) < 2 {
		return 0, errUsage
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[1])
	}

	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe — короткое сообщение для терминала; тело ошибки backend'а как есть.
func describe(err error) string {
	var e *apierrors.Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Kind {
	case apierrors.KindRefreshInvalid:
		return "session expired, please log in again"
	case apierrors.KindUnauthenticated, apierrors.KindAuthExpired:
		if msg := e.Message(); msg != "" {
			return "not authenticated: " + msg
		}
		return "not authenticated, run: silverctl login"
	case apierrors.KindApplication:
		if len(e.Detail) > 0 {
			return fmt.Sprintf("%d %s", e.Status, e.Detail)
		}
	}

	return err.Error()
}
