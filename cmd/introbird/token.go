package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/introbird/internal/config"
	"github.com/jonathan/introbird/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local development (AUTH_MODE=jwt)",
	Long:  `Sign a JWT for the given user id with JWT_SECRET. The server accepts it when AUTH_MODE=jwt.`,
	RunE:  runToken,
}

var tokenUser string

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id to put in the token subject (required)")
	if err := tokenCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenUser)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token) //nolint:errcheck
	return nil
}
