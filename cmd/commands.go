package main

import (
	"fmt"

	"catalog-system/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// catalog serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return err
		}

		app, err := bootstrap.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		return app.Run()
	},
}

// catalog migrate: bring the schema up to date and exit.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return err
		}

		db, err := bootstrap.OpenDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		logrus.Info("Migrations complete")
		return nil
	},
}

var superuserFlags struct {
	username string
	email    string
	password string
}

// catalog createsuperuser: the only way to create a superuser account.
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return err
		}

		db, err := bootstrap.OpenDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		user, err := bootstrap.NewUserUsecase(db).CreateSuperuser(
			cmd.Context(),
			superuserFlags.username,
			superuserFlags.email,
			superuserFlags.password,
		)
		if err != nil {
			return fmt.Errorf("failed to create superuser: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	flags := createSuperuserCmd.Flags()
	flags.StringVar(&superuserFlags.username, "username", "", "superuser login name")
	flags.StringVar(&superuserFlags.email, "email", "", "superuser email address")
	flags.StringVar(&superuserFlags.password, "password", "", "superuser password")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
