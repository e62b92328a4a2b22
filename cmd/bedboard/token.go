package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jmendes/bedboard/internal/auth"
	"github.com/jmendes/bedboard/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTokenCmd() *cobra.Command {
	var (
		configPath string
		username   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a staff member",
		Long:  "Prompts for the staff password and prints a bearer token for use against the API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, configPath, username)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bedboard.yaml", "path to config file")
	cmd.Flags().StringVarP(&username, "user", "u", "", "staff username")
	cmd.MarkFlagRequired("user")
	return cmd
}

func runToken(cmd *cobra.Command, configPath, username string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := auth.New(cfg.Auth)
	if err != nil {
		return err
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	token, staff, err := svc.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed for %q: %w", username, err)
	}

	fmt.Fprintf(out, "Token for %s (%s), valid %dh:\n", staff.Name, staff.Role, cfg.Auth.TokenTTLHours)
	fmt.Fprintln(out, token)
	return nil
}

// readPassword reads the password without echo when stdin is a terminal,
// falling back to a plain line read so the command stays scriptable.
func readPassword(cmd *cobra.Command) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return "", fmt.Errorf("read password: no input")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
