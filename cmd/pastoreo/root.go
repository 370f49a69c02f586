package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/session"
	"github.com/pastoreohq/go-pastoreo/pkg/config"
	"github.com/pastoreohq/go-pastoreo/pkg/util"
)

// app wires the session service and the API client once per invocation and
// hands them to every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Store
	client   *api.Client
}

func newApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	storage, err := session.NewFileStorage(cfg.Credentials.Path)
	if err != nil {
		return nil, fmt.Errorf("opening credentials store: %w", err)
	}

	// The CLI's "navigation" is telling the user where the web app would
	// have sent them.
	nav := session.NavigatorFunc(func(route string) {
		fmt.Printf("→ %s\n", route)
	})

	sessions := session.NewStore(storage, nav, logger)
	client := api.NewClient(cfg.API.BaseURL, sessions, cfg.API.Timeout(), logger)

	return &app{cfg: cfg, logger: logger, sessions: sessions, client: client}, nil
}

func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "pastoreo",
		Short:         "Command-line client for the Pastoreo church-management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
	}

	root.AddCommand(
		newLoginCmd(&a),
		newLogoutCmd(&a),
		newWhoamiCmd(&a),
		newFollowupsCmd(&a),
		newMembersCmd(&a),
		newFamiliesCmd(&a),
		newGroupsCmd(&a),
	)

	return root
}

// waitSettled blocks until the store's in-flight fetch lands, bounded so a
// dead backend cannot hang the CLI.
func waitSettled(loading func() bool, changes <-chan struct{}) error {
	deadline := time.After(30 * time.Second)
	for loading() {
		select {
		case <-changes:
		case <-deadline:
			return errors.New("timed out waiting for the backend")
		}
	}
	return nil
}
