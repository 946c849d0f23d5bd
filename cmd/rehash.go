package cmd

import (
	"context"
	"fmt"
	"strings"

	"evspare/internal/db"
	"evspare/internal/repositories"
	"evspare/internal/services"
	"evspare/internal/session"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rehashAccounts []string

var rehashCmd = &cobra.Command{
	Use:   "rehash",
	Short: "Recompute stored credentials for named accounts",
	Long: `Recomputes the stored credential of each account with the configured password
scheme, then logs in with it to confirm. Usage:

	evspare rehash --account admin@elyfevspare.com=admin123 --account customer@example.com=customer123
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := parseAccounts(rehashAccounts)
		if err != nil {
			return err
		}

		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		conn, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close(conn)

		auth, err := newAuthService(cfg, repositories.NewGORMUserRepository(conn), session.NewMemoryStore(), log)
		if err != nil {
			return err
		}
		return rehash(cmd.Context(), auth, accounts, log)
	},
}

func init() {
	rootCmd.AddCommand(rehashCmd)
	rehashCmd.Flags().StringArrayVar(&rehashAccounts, "account", nil, "email=password pair; repeatable")
	_ = rehashCmd.MarkFlagRequired("account")
}

type accountCredential struct {
	Email    string
	Password string
}

// parseAccounts splits email=password pairs. The password may itself contain '='.
func parseAccounts(pairs []string) ([]accountCredential, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one --account is required")
	}
	out := make([]accountCredential, 0, len(pairs))
	for _, pair := range pairs {
		email, password, ok := strings.Cut(pair, "=")
		email = strings.TrimSpace(email)
		if !ok || email == "" || password == "" {
			return nil, fmt.Errorf("invalid --account %q, want email=password", pair)
		}
		out = append(out, accountCredential{Email: email, Password: password})
	}
	return out, nil
}

func rehash(ctx context.Context, auth *services.AuthService, accounts []accountCredential, log zerolog.Logger) error {
	for _, a := range accounts {
		if err := auth.SetPasswordByEmail(ctx, a.Email, a.Password); err != nil {
			return fmt.Errorf("rehash %s: %w", a.Email, err)
		}
		sess, err := auth.Login(ctx, a.Email, a.Password)
		if err != nil {
			return fmt.Errorf("verify %s: %w", a.Email, err)
		}
		auth.Logout(ctx, sess.Token)
		log.Info().Str("email", a.Email).Str("role", string(sess.Role)).Msg("credential updated and verified")
	}
	return nil
}
