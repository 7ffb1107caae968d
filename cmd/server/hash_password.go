package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// newHashPasswordCmd prints the credential hash of passwords read from the
// arguments or, when none are given, one per line from stdin. It is used to
// seed accounts directly in the database.
func newHashPasswordCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password...]",
		Short: "Print the bcrypt hash of one or more passwords",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			codec, err := auth.NewBcryptCodecFromConfig(cfg.Auth)
			if err != nil {
				return err
			}

			passwords := args
			if len(passwords) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
						passwords = append(passwords, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read passwords: %w", err)
				}
			}
			if len(passwords) == 0 {
				return errors.New("no passwords given")
			}

			for _, password := range passwords {
				if err := domain.ValidatePassword(password, cfg.Auth.PasswordMinLength); err != nil {
					return err
				}
				hash, err := codec.Hash(cmd.Context(), password)
				if err != nil {
					return fmt.Errorf("hash password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}
			return nil
		},
	}
}
