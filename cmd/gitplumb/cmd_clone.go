package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitplumb/pkg/remote"
	"github.com/odvcencio/gitplumb/pkg/repo"
)

func newCloneCmd() *cobra.Command {
	var remoteName string

	cmd := &cobra.Command{
		Use:   "clone <url> [dir]",
		Short: "Initialize a repository and list the refs of a remote",
		Long: "Initialize dir, record url as a remote and print the refs it advertises. " +
			"Objects are not transferred.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteURL := args[0]
			dest := inferRepoNameFromRemote(remoteURL)
			if len(args) > 1 {
				dest = args[1]
			}
			absDest, err := filepath.Abs(dest)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			log := commandLogger(cmd)
			client, err := remote.NewClientWithOptions(remoteURL, remote.ClientOptions{Logger: log.Named("remote")})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cloning from %s into %s\n", client.Endpoint().BaseURL, absDest)

			adv, err := client.ListRefs(cmd.Context())
			if err != nil {
				return err
			}

			if err := os.MkdirAll(absDest, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
			r, err := repo.Init(absDest, repo.WithLogger(log))
			if err != nil {
				return err
			}
			if err := r.SetRemote(remoteName, remoteURL); err != nil {
				return err
			}

			for _, ref := range adv.Refs {
				fmt.Fprintf(out, "%s\t%s\n", ref.Hash, ref.Name)
			}
			fmt.Fprintf(out, "fetched %d refs from %s; objects were not transferred\n", len(adv.Refs), remoteName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&remoteName, "origin", "o", "origin", "name to record the remote under")
	return cmd
}

// inferRepoNameFromRemote derives a directory name from the last path
// segment of a remote URL.
func inferRepoNameFromRemote(remoteURL string) string {
	trimmed := strings.Trim(strings.TrimSpace(remoteURL), "/")
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	base := strings.TrimSuffix(filepath.Base(trimmed), ".git")
	if base == "" || base == "." || strings.Contains(base, ":") {
		return "repo"
	}
	return base
}
