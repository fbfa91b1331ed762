package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adswafford/redbiom/internal/api/auth"
	"github.com/adswafford/redbiom/pkg/config"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the admin API routes",
	Long: `Issue a signed bearer token using the configured auth secret. The
secret comes from api.auth.secret or the ` + config.EnvAuthSecret + `
environment variable.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject claim")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	secret := cfg.API.GetAuthSecret()
	if secret == "" {
		return fmt.Errorf("no auth secret configured (set api.auth.secret or %s)", config.EnvAuthSecret)
	}

	tokens, err := auth.NewTokenService(auth.Config{Secret: secret})
	if err != nil {
		return err
	}

	token, err := tokens.Issue(tokenSubject)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
