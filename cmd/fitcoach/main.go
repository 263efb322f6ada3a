package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fitcoach-client/internal/api"
	"fitcoach-client/internal/apierr"
	"fitcoach-client/internal/config"
	"fitcoach-client/internal/keystore"
	"fitcoach-client/internal/logger"
	"fitcoach-client/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fitcoach:", apierr.FromError(err).Error())
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real config comes from viper below
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return fmt.Errorf("no command given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	ctx = logger.ToContext(ctx, log)

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home dir: %w", err)
	}

	fileStore, err := keystore.NewFileStore(cfg.StateDir(home))
	if err != nil {
		return err
	}

	var store keystore.Store = fileStore
	if cfg.Storage.Mode == "encrypted" {
		store, err = keystore.NewEncryptedStore(ctx, fileStore, cfg.Storage.Passcode)
		if err != nil {
			return err
		}
	}

	manager := session.NewManager(store, log)
	manager.Subscribe(func(s session.State) {
		if s == session.StateCleared {
			fmt.Fprintln(os.Stderr, "session ended, log in again with: fitcoach login")
		}
	})
	manager.Load(ctx)

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	client, err := api.NewClient(cfg.API.BaseURL, httpClient, manager,
		func() { manager.Clear(ctx) }, log)
	if err != nil {
		return err
	}

	app := &cli{
		manager: manager,
		auth:    api.NewAuthService(client),
		trainer: api.NewTrainerService(client),
		client:  api.NewClientService(client),
	}
	return app.dispatch(ctx, args[0], args[1:])
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: fitcoach [-config path] <command> [flags]

Commands:
  login            -email -password
  register         -name -email -password -role trainer|client
  forgot-password  -email
  apple-login      -identity-token [-first-name] [-last-name] [-role]
  logout
  whoami
  exercises        list | add -name [-muscle] [-desc] | rm -id
  clients
  assign           -client -workout -exercise -sets -reps -weight [-due]
  assignments
  progress         log -assignment -exercise -sets -reps -weight | show [-since]
`)
}
