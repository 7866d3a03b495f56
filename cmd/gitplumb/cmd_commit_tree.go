package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitplumb/pkg/object"
	"github.com/odvcencio/gitplumb/pkg/repo"
)

func newCommitTreeCmd() *cobra.Command {
	var message string
	var parent string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> -m <message> [-p <parent>]",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := r.CommitTree(repo.CommitRequest{
				Tree:    object.Hash(strings.TrimSpace(args[0])),
				Parent:  object.Hash(strings.TrimSpace(parent)),
				Message: message,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent commit hash")
	return cmd
}
