package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	gdrive "github.com/mtoivanen/gdrive-go"
)

// putParallelism bounds concurrent uploads for multi-file put. With a
// serialized client the gate reduces this to one at a time anyway.
const putParallelism = 4

var (
	flagPutFolder    string
	flagPutUpdate    string
	flagPutThumbnail string
)

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <file> [file...]",
		Short: "Upload one or more local files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPut,
	}

	cmd.Flags().StringVar(&flagPutFolder, "folder", "", "parent folder ID for uploaded files")
	cmd.Flags().StringVar(&flagPutUpdate, "update", "", "file ID to update in place (single file only)")
	cmd.Flags().StringVar(&flagPutThumbnail, "thumbnail", "", "PNG file to attach as thumbnail")

	return cmd
}

func runPut(_ *cobra.Command, args []string) error {
	if flagPutUpdate != "" && len(args) > 1 {
		return fmt.Errorf("--update accepts exactly one file, got %d", len(args))
	}

	logger := buildLogger()
	ctx := context.Background()

	client, err := newClient(ctx, logger)
	if err != nil {
		return err
	}

	var thumbnail []byte
	if flagPutThumbnail != "" {
		thumbnail, err = os.ReadFile(flagPutThumbnail)
		if err != nil {
			return fmt.Errorf("reading thumbnail: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(putParallelism)

	for _, path := range args {
		g.Go(func() error {
			f, openErr := os.Open(path)
			if openErr != nil {
				return fmt.Errorf("opening %s: %w", path, openErr)
			}
			defer f.Close()

			result, upErr := client.Upload(ctx, gdrive.UploadSpec{
				Media:      f,
				FileID:     flagPutUpdate,
				FolderID:   flagPutFolder,
				Thumbnail:  thumbnail,
				RetryCount: resolvedCfg.RetryCount,
				Extra:      map[string]any{"name": filepath.Base(path)},
			})
			if upErr != nil {
				return fmt.Errorf("uploading %s: %w", path, upErr)
			}

			statusf("Uploaded %s (%s)\n", path, result.ID)
			fmt.Println(result.ID)

			return nil
		})
	}

	return g.Wait()
}
