package cli

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/domain/user"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

var (
	userDisplayName string
	userPassword    string
)

// newUserCmd builds account administration commands.  There is no
// self-service signup; operators are provisioned from the terminal.
func newUserCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an operator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreate(cmd, opts, args[0])
		},
	}
	createCmd.Flags().StringVar(&userDisplayName, "display-name", "", "display name (default: the username)")
	createCmd.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")

	deactivateCmd := &cobra.Command{
		Use:   "deactivate <username>",
		Short: "Disable an operator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSetActive(cmd, opts, args[0], false)
		},
	}

	activateCmd := &cobra.Command{
		Use:   "activate <username>",
		Short: "Re-enable an operator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSetActive(cmd, opts, args[0], true)
		},
	}

	cmd.AddCommand(createCmd, deactivateCmd, activateCmd)
	return cmd
}

func openUserRepo(opts *RootOptions) (*config.Config, user.Repository, func() error, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, repositories.NewPostgresUserRepo(conn, log), conn.Close, nil
}

func runUserCreate(cmd *cobra.Command, opts *RootOptions, username string) error {
	password := userPassword
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "cannot read password")
		}
		password = string(raw)
	}
	if len(password) < 8 {
		return errors.New(errors.ErrCodeValidation, "password must be at least 8 characters")
	}

	cfg, repo, closeDB, err := openUserRepo(opts)
	if err != nil {
		return err
	}
	defer closeDB()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Session.BcryptCost)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to hash password")
	}

	displayName := userDisplayName
	if displayName == "" {
		displayName = username
	}

	u := &user.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := repo.Create(cmd.Context(), u); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.Username, u.ID)
	return nil
}

func runUserSetActive(cmd *cobra.Command, opts *RootOptions, username string, active bool) error {
	_, repo, closeDB, err := openUserRepo(opts)
	if err != nil {
		return err
	}
	defer closeDB()

	u, err := repo.GetByUsername(cmd.Context(), username)
	if err != nil {
		return err
	}
	if err := repo.SetActive(cmd.Context(), u.ID, active); err != nil {
		return err
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "User %s %s\n", username, state)
	return nil
}
