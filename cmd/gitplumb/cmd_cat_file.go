package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitplumb/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	var pretty, showType, showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s) <object>",
		Short: "Print an object's content, type, or size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := 0
			for _, b := range []bool{pretty, showType, showSize} {
				if b {
					selected++
				}
			}
			if selected != 1 {
				return fmt.Errorf("exactly one of -p, -t or -s is required")
			}

			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			objType, data, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(data))
			case objType == object.TypeTree:
				tr, err := object.UnmarshalTree(data, object.ParseLenient)
				if err != nil {
					return err
				}
				printTreeEntries(out, tr.Entries)
			default:
				_, err := out.Write(data)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the object payload size")
	return cmd
}

// printTreeEntries writes "<mode> <type> <hash>\t<name>" lines.
func printTreeEntries(out io.Writer, entries []object.TreeEntry) {
	for _, e := range entries {
		typ := object.TypeBlob
		if e.IsDir {
			typ = object.TypeTree
		}
		fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode(), typ, e.Hash, e.Name)
	}
}
