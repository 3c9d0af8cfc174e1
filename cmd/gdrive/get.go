package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtoivanen/gdrive-go/internal/config"
)

var (
	flagGetOutput  string
	flagGetMaxRate string
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <fileID>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}

	cmd.Flags().StringVarP(&flagGetOutput, "output", "o", "", "destination path (default: stdout)")
	cmd.Flags().StringVar(&flagGetMaxRate, "max-rate", "", `per-download speed ceiling, e.g. "1MB/s" (default: config max_bytes_per_second)`)

	return cmd
}

func runGet(_ *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := context.Background()

	client, err := newClient(ctx, logger)
	if err != nil {
		return err
	}

	maxRate := resolvedCfg.MaxBytesPerSecond

	if flagGetMaxRate != "" {
		maxRate, err = config.ParseRate(flagGetMaxRate)
		if err != nil {
			return err
		}
	}

	fileID := args[0]

	if flagGetOutput != "" {
		if err := client.DownloadFile(ctx, fileID, flagGetOutput, maxRate); err != nil {
			return err
		}

		statusf("Downloaded %s to %s\n", fileID, flagGetOutput)

		return nil
	}

	data, err := client.DownloadBytes(ctx, fileID, maxRate)
	if err != nil {
		return err
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}
