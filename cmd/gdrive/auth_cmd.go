package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtoivanen/gdrive-go/drive"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize access to Google Drive",
		RunE:  runLogin,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved authorization token",
		RunE:  runLogout,
	}
}

func runLogin(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	cfg := resolvedCfg

	_, err := drive.Login(context.Background(), cfg.Scopes, cfg.CredentialsPath, cfg.TokenPath,
		func(prompt drive.AuthPrompt) {
			// Authorization prompts must always be visible — not
			// suppressed by --quiet.
			fmt.Fprintf(os.Stderr, "Visit this URL to authorize:\n%s\n\nPaste the code here: ", prompt.URL)
		},
		func() (string, error) {
			code, readErr := bufio.NewReader(os.Stdin).ReadString('\n')
			if readErr != nil {
				return "", readErr
			}

			return strings.TrimSpace(code), nil
		},
		logger,
	)
	if err != nil {
		return err
	}

	statusf("Login successful.\n")

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	if err := drive.Logout(resolvedCfg.TokenPath, buildLogger()); err != nil {
		return err
	}

	statusf("Logged out.\n")

	return nil
}
