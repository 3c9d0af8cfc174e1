package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <fileID> <text>",
		Short: "Add a comment to a file",
		Args:  cobra.ExactArgs(2),
		RunE:  runComment,
	}
}

func runComment(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newClient(ctx, buildLogger())
	if err != nil {
		return err
	}

	commentID, err := client.CreateComment(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Println(commentID)

	return nil
}
