package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitplumb/pkg/object"
)

func newLsTreeCmd() *cobra.Command {
	var nameOnly, strict bool

	cmd := &cobra.Command{
		Use:   "ls-tree [--name-only] <tree>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			mode := object.ParseLenient
			if strict {
				mode = object.ParseStrict
			}

			out := cmd.OutOrStdout()
			if nameOnly {
				names, err := r.ListTree(h, mode)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			tr, err := r.Store.ReadTree(h, mode)
			if err != nil {
				return err
			}
			entries := append([]object.TreeEntry(nil), tr.Entries...)
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
			printTreeEntries(out, entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "print entry names only")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed tree records instead of stopping")
	return cmd
}
