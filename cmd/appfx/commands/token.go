package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/pkg/host"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <principal>",
	Short: "Sign a bearer token for the web host",
	Long: `Sign an HS256 bearer token naming principal with server.jwt_secret.
The web host accepts it in the Authorization header and reports its
subject as the request principal.

Examples:
  appfx token alice
  appfx token alice --ttl 24h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("server.jwt_secret is not set")
	}
	if tokenTTL <= 0 {
		return fmt.Errorf("invalid --ttl %s: must be positive", tokenTTL)
	}

	tokens, err := host.NewTokenVerifier(cfg.Server.JWTSecret, cfg.Server.JWTIssuer)
	if err != nil {
		return err
	}
	token, err := tokens.Sign(args[0], tokenTTL)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
