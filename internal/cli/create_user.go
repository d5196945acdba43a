package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bluemoxon/bluemoxon/internal/auth"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

var errBlankPassword = errors.New("password must not be blank")

func newCreateUserCmd(flags *rootFlags) *cobra.Command {
	var (
		email string
		admin bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account, reading the password from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			logger := flags.newLogger()

			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			user, err := store.InsertUser(ctx, domain.User{
				Email:        email,
				PasswordHash: hash,
				Admin:        admin,
			})
			if err != nil {
				return err
			}

			cmd.Printf("created user %s (%s)\n", user.Email, user.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the new user")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin privileges")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword reads a single line from the command's stdin. Trailing
// newlines are stripped, inner whitespace is kept.
func readPassword(cmd *cobra.Command) (string, error) {
	cmd.PrintErrln("password:")

	reader := bufio.NewReader(cmd.InOrStdin())

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errBlankPassword
	}

	return password, nil
}
