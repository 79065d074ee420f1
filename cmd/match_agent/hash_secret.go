package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/spf13/cobra"
)

var hashSecretCmd = &cobra.Command{
	Use:   "hash-secret [secret]",
	Short: "Hash an API client secret for the api_clients config",
	Long: `Prints the bcrypt hash of a client secret using BCRYPT_COST and SECRET_PEPPER.
The secret is read from standard input when not given as an argument.`,
	Args: cobra.MaximumNArgs(1),
	// Needs no config file or storage
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
	RunE:              runHashSecret,
}

func init() {
	rootCmd.AddCommand(hashSecretCmd)
}

func runHashSecret(cmd *cobra.Command, args []string) error {
	var secret string
	if len(args) == 1 {
		secret = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read secret from stdin: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return fmt.Errorf("secret must not be empty")
	}

	secrets, err := config.NewSecretConfig()
	if err != nil {
		return err
	}
	hash, err := secrets.HashSecret(secret)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
