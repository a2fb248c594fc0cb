package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/hostjobs/internal/auth"
	"evalgo.org/hostjobs/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage authentication tokens",
	Long:  `Generate authentication tokens for operators`,
}

var generateOperatorTokenCmd = &cobra.Command{
	Use:   "operator [name]",
	Short: "Generate an operator authentication token",
	Long: `Generate a JWT token for an operator.

The token is signed with the jwt_secret from the configuration file and
carries the operator name and roles. Viewers may only read; operators may
also create hosts, change states and dispatch jobs; admins may do everything.

Examples:
  # Generate an operator token with the default expiration
  hostjobs token operator alice

  # Read-only token valid for one week
  hostjobs token operator dashboard --role viewer --expiration 168

  # Use custom secret (overrides config)
  hostjobs token operator alice --secret "my-custom-secret"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateOperatorToken,
}

var (
	tokenRoles      []string
	tokenExpiration int64
	tokenSecret     string
)

func init() {
	generateOperatorTokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{string(auth.RoleOperator)}, "roles to grant (admin, operator, viewer)")
	generateOperatorTokenCmd.Flags().Int64Var(&tokenExpiration, "expiration", 0, "token expiration in hours (default: security.jwt_expiration)")
	generateOperatorTokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "JWT secret (default: from config file)")

	tokenCmd.AddCommand(generateOperatorTokenCmd)
}

func runGenerateOperatorToken(cmd *cobra.Command, args []string) error {
	operator := args[0]

	secret := tokenSecret
	if secret == "" && cfg != nil {
		secret = cfg.Security.JWTSecret
	}
	if secret == "" {
		return fmt.Errorf(`jwt_secret not found in config file and --secret not provided

Please either:
  1. Add to your config.yaml:
     security:
       jwt_secret: your-secret-here

  2. Or use the --secret flag:
     hostjobs token operator %s --secret "your-secret-here"`, operator)
	}

	roles := make([]auth.Role, 0, len(tokenRoles))
	for _, r := range tokenRoles {
		role, err := auth.ParseRole(r)
		if err != nil {
			return err
		}
		roles = append(roles, role)
	}

	security := config.SecurityConfig{JWTSecret: secret}
	if cfg != nil {
		security.JWTExpiration = cfg.Security.JWTExpiration
	}
	expiration := time.Duration(tokenExpiration) * time.Hour

	token, err := auth.NewJWTService(security).GenerateOperatorToken(operator, roles, expiration)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Operator Token Generated Successfully\n")
	fmt.Fprintf(out, "=====================================\n\n")
	fmt.Fprintf(out, "Operator:   %s\n", operator)
	fmt.Fprintf(out, "Roles:      %v\n", tokenRoles)
	if expiration > 0 {
		fmt.Fprintf(out, "Expiration: %s\n", expiration)
	}
	fmt.Fprintf(out, "\nToken:\n%s\n\n", token)
	fmt.Fprintf(out, "Use it with the CLI:\n")
	fmt.Fprintf(out, "  client:\n")
	fmt.Fprintf(out, "    token: %s\n\n", token)
	fmt.Fprintf(out, "⚠️  Keep this token secure!\n")

	return nil
}
