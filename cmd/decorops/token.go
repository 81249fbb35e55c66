package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"decorops/internal/models"
	"decorops/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for a dashboard user",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().String("sub", "", "user id (random when empty)")
	tokenCmd.Flags().String("name", "", "display name")
	tokenCmd.Flags().String("role", string(models.RoleAdmin), "role: admin, designer, production_manager, procurement, sales, finance")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	sub, _ := cmd.Flags().GetString("sub")
	name, _ := cmd.Flags().GetString("name")
	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	if sub == "" {
		sub = uuid.NewString()
	}
	auth := server.NewAuthenticator(cfg.Auth.JWTSecret, "")
	token, err := auth.Issue(models.User{ID: sub, Name: name, Role: models.Role(role)}, ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
