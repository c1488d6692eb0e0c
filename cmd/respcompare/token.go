package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/respcompare/internal/config"
	"github.com/jonathan/respcompare/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the API write endpoints",
	Long:  "Signs a JWT with JWT_SECRET for the given subject. The token is accepted by POST /results, DELETE /results/{id} and POST /results/{id}/compare.",
	RunE:  runToken,
}

var (
	tokenSubject  string
	tokenClientID string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Client name recorded in the token (required)")
	tokenCmd.Flags().StringVar(&tokenClientID, "client-id", "", "Client UUID (default: random)")

	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	clientID := uuid.Nil
	if tokenClientID != "" {
		clientID, err = uuid.Parse(tokenClientID)
		if err != nil {
			return fmt.Errorf("invalid --client-id: %w", err)
		}
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenSubject, clientID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
