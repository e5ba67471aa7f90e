package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/repository"
	"fireplace_rf/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const passwordEnv = "FIREPLACE_PASSWORD"

var errPasswordMismatch = errors.New("passwords do not match")

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an API user",
	Long: `add creates a user that can sign in to the HTTP API. The password is read
from ` + passwordEnv + ` when set, otherwise it is prompted for twice.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

func init() {
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	log := logger.Get(viper.GetString("log_level"))
	database, err := openDB(log)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer database.Close()

	repos := repository.NewRepository(database)
	id, err := service.NewAuthService(repos.Auth, authConfig()).SignUp(cmd.Context(), args[0], password)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", args[0], id)
	return nil
}

func readPassword() (string, error) {
	if p := os.Getenv(passwordEnv); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passwordEnv)
	}

	first, err := prompt(fd, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := prompt(fd, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func prompt(fd int, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
