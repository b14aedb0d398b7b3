package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "clipmunk"
	keyringAccount = "channel-token"
)

// keyringToken returns the stored token, or "" if there is none.
func keyringToken() string {
	tok, err := keyring.Get(keyringService, keyringAccount)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			slog.Warn("keyring lookup failed", "err", err)
		}
		return ""
	}
	return tok
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the shared secret stored in the OS keyring",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a token and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force && keyringToken() != "" {
				return errors.New("a token already exists (use --force to replace it)")
			}
			buf := make([]byte, 32)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			tok := hex.EncodeToString(buf)
			if err := keyring.Set(keyringService, keyringAccount, tok); err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			fmt.Println(tok)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "replace an existing token")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored token",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			tok, err := keyring.Get(keyringService, keyringAccount)
			if err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			fmt.Println(tok)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := keyring.Delete(keyringService, keyringAccount)
			if err != nil && !errors.Is(err, keyring.ErrNotFound) {
				return fmt.Errorf("keyring: %w", err)
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, clearCmd)
	return cmd
}
