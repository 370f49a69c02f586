package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/session"
)

func newLoginCmd(a **app) *cobra.Command {
	var email, password, churchSlug string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := (*a).client.Login(cmd.Context(), api.LoginInput{
				Email:      email,
				Password:   password,
				ChurchSlug: churchSlug,
			})
			if err != nil {
				return err
			}

			(*a).sessions.Login(result.AccessToken, session.User{
				ID:              result.User.ID,
				Email:           result.User.Email,
				DisplayName:     result.User.FullName,
				IsPlatformAdmin: result.User.IsPlatformAdmin,
			}, result.ChurchID)

			fmt.Printf("Sesión iniciada como %s\n", result.User.FullName)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&churchSlug, "church", "", "church slug (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			(*a).sessions.Logout()
			fmt.Println("Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(*a).sessions.IsAuthenticated() {
				fmt.Println("No hay sesión activa")
				return nil
			}
			sess := (*a).sessions.Current()
			fmt.Printf("%s <%s>\n", sess.User.DisplayName, sess.User.Email)
			if sess.TenantID != "" {
				fmt.Printf("Iglesia: %s\n", sess.TenantID)
			}
			if sess.User.IsPlatformAdmin {
				fmt.Println("Administrador de plataforma")
			}
			return nil
		},
	}
}
