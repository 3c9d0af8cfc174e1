package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var flagMkdirParent string

func newMkdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runMkdir,
	}

	cmd.Flags().StringVar(&flagMkdirParent, "parent", "", "parent folder ID")

	return cmd
}

func runMkdir(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newClient(ctx, buildLogger())
	if err != nil {
		return err
	}

	folder, err := client.CreateFolder(ctx, args[0], flagMkdirParent, nil)
	if err != nil {
		return err
	}

	statusf("Created folder %s\n", args[0])
	fmt.Println(folder.ID)

	return nil
}
