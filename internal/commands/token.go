package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/gridium/internal/auth"
	"evalgo.org/gridium/models"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage authentication tokens",
	Long:  `Generate authentication tokens for API callers and worker agents`,
}

var generateAgentTokenCmd = &cobra.Command{
	Use:   "agent [worker-id]",
	Short: "Generate a worker agent authentication token",
	Long: `Generate a JWT token the scheduler presents to a worker agent.

The token is signed with the agent_token_secret from the configuration file
and includes the worker ID in the claims. By default, tokens expire after 1 year.

Examples:
  # Generate token for worker-01
  gridium token agent worker-01

  # Generate token with custom expiration (in hours)
  gridium token agent worker-01 --expiration 8760

  # Use custom secret (overrides config)
  gridium token agent worker-01 --secret "my-custom-secret"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateAgentToken,
}

var generateUserTokenCmd = &cobra.Command{
	Use:   "user [subject]",
	Short: "Generate an API caller token",
	Long: `Generate a JWT token for an API caller, signed with jwt_secret.

Roles control what the caller may do: viewer (read), user (read and reserve
sessions), admin (everything including drain).

Examples:
  gridium token user ci-pipeline --roles user
  gridium token user ops --roles admin,user`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateUserToken,
}

var (
	tokenExpiration int64
	tokenSecret     string
	tokenRoles      []string
)

func init() {
	generateAgentTokenCmd.Flags().Int64Var(&tokenExpiration, "expiration", 8760, "Token expiration in hours (default: 8760 = 1 year)")
	generateAgentTokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Agent token secret (default: from config file)")

	generateUserTokenCmd.Flags().StringSliceVar(&tokenRoles, "roles", []string{"viewer"}, "Comma-separated roles (admin, user, viewer)")

	tokenCmd.AddCommand(generateAgentTokenCmd)
	tokenCmd.AddCommand(generateUserTokenCmd)
}

func runGenerateAgentToken(cmd *cobra.Command, args []string) error {
	workerID := args[0]

	secret := tokenSecret
	if secret == "" {
		if cfg != nil {
			secret = cfg.Security.AgentTokenSecret
			if secret == "" {
				secret = cfg.Security.JWTSecret
			}
		}

		if secret == "" {
			return fmt.Errorf(`agent_token_secret not found in config file and --secret not provided

Please either:
  1. Add to your config.yaml:
     security:
       agent_token_secret: your-secret-here

  2. Or use the --secret flag:
     gridium token agent %s --secret "your-secret-here"`, workerID)
		}
	}

	expiration := time.Duration(tokenExpiration) * time.Hour

	token, err := auth.GenerateAgentToken(secret, workerID, expiration)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("Agent Token Generated Successfully\n")
	fmt.Printf("==================================\n\n")
	fmt.Printf("Worker ID:  %s\n", workerID)
	fmt.Printf("Expiration: %s (%d hours)\n", expiration, tokenExpiration)
	fmt.Printf("\nToken:\n%s\n\n", token)
	fmt.Printf("Add this to your workers file entry:\n")
	fmt.Printf("  - id: %s\n", workerID)
	fmt.Printf("    token: %s\n\n", token)
	fmt.Printf("⚠️  Keep this token secure! It grants full access to the worker agent.\n")

	return nil
}

func runGenerateUserToken(cmd *cobra.Command, args []string) error {
	subject := args[0]

	roles := make([]models.Role, 0, len(tokenRoles))
	for _, r := range tokenRoles {
		role := models.Role(strings.TrimSpace(r))
		switch role {
		case models.RoleAdmin, models.RoleUser, models.RoleViewer:
			roles = append(roles, role)
		default:
			return fmt.Errorf("unknown role %q (valid: admin, user, viewer)", r)
		}
	}

	token, err := auth.NewJWTService(cfg).GenerateToken(subject, roles...)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("Caller Token Generated Successfully\n")
	fmt.Printf("===================================\n\n")
	fmt.Printf("Subject:    %s\n", subject)
	fmt.Printf("Roles:      %s\n", strings.Join(tokenRoles, ", "))
	fmt.Printf("Expiration: %s\n", cfg.Security.JWTExpiration)
	fmt.Printf("\nToken:\n%s\n", token)

	return nil
}
