package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/database"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users in the user database",
	Long: `Manage accounts stored in the user database (auth.database).

Passwords are stored as argon2id hashes. Credentials from the CSV/JSON
file and inline configuration are read-only and not managed here.`,
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user or reset its password",
	Long: `Create a user or reset an existing user's password.

The password is prompted for interactively unless --password-stdin is set.

Examples:
  bucketgate users add alice --db-type sqlite --db-dsn users.db
  echo "s3cret" | bucketgate users add alice --password-stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersAdd,
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove <username> [username...]",
	Short: "Remove users",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUsersRemove,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersPasswordStdin bool

func init() {
	usersAddCmd.Flags().BoolVar(&usersPasswordStdin, "password-stdin", false, "read the password from stdin")

	usersCmd.AddCommand(usersAddCmd, usersRemoveCmd, usersListCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	username := args[0]

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	var password string
	if usersPasswordStdin {
		password, err = readPassword(cmd)
	} else {
		password, err = promptPassword()
	}
	if err != nil {
		return err
	}
	if password == "" {
		return nil
	}

	repo, closeDB, err := openUserRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	created, err := database.AddUser(ctx, repo, username, password)
	if err != nil {
		return err
	}

	if created {
		slog.Info("user created", "user", username)
	} else {
		slog.Info("password updated", "user", username)
	}
	return nil
}

func runUsersRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repo, closeDB, err := openUserRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	removed := 0
	notFound := 0
	for _, username := range args {
		err := repo.Delete(ctx, username)
		if errors.Is(err, bucketgate.ErrNotFound) {
			notFound++
			slog.Warn("not found", "user", username)
			continue
		}
		if err != nil {
			return fmt.Errorf("remove %s: %w", username, err)
		}
		removed++
		slog.Info("removed", "user", username)
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repo, closeDB, err := openUserRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	users, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "USERNAME\tCREATED\tUPDATED")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, u.CreatedAt.Format(time.RFC3339), u.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// promptPassword asks for the password twice. An empty result means the
// user aborted.
func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("password is required")
			}
			return nil
		},
	}
	password, err := prompt.Run()
	if err != nil {
		return "", handlePromptError(err)
	}

	confirm := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
		Validate: func(input string) error {
			if input != password {
				return errors.New("passwords do not match")
			}
			return nil
		},
	}
	if _, err = confirm.Run(); err != nil {
		return "", handlePromptError(err)
	}

	return password, nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	var password string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &password); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return "", errors.New("read password: empty password")
	}
	return password, nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
