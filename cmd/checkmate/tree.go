package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dgallion1/checkmate/internal/client"
	"github.com/dgallion1/checkmate/internal/section"
)

func (a *app) treeCmd() *cobra.Command {
	var (
		remote     remoteFlags
		sectionIDs string
		byName     bool
	)
	cmd := &cobra.Command{
		Use:   "tree <project-id>",
		Short: "Print a project's section tree from a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			server := remote.server
			if server == "" {
				server = "http://localhost:" + a.cfg.Port
			}

			c := client.NewClient(server, remote.token)
			tree, err := c.SectionTree(cmd.Context(), projectID, section.ParseSectionIDs(sectionIDs))
			if err != nil {
				return err
			}
			if byName {
				tree.Tree = section.SortByName(tree.Tree)
			}
			renderTree(cmd.OutOrStdout(), tree)
			return nil
		},
	}
	remote.register(cmd)
	cmd.Flags().StringVar(&sectionIDs, "section-ids", "", `selected sections as a JSON array, e.g. "[3,7]"`)
	cmd.Flags().BoolVar(&byName, "sort-name", false, "order siblings by name")
	return cmd
}

// renderTree prints the forest pre-order, one row per section, with its
// hierarchy path. Selected rows are starred and rows on an open chain are
// marked.
func renderTree(w io.Writer, tree *client.Tree) {
	if len(tree.Tree) == 0 {
		_, _ = fmt.Fprintln(w, "(no sections)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Section", "Path", "Selected", "Open"})

	var walk func(nodes []*section.DisplaySection, names []string, depth int)
	walk = func(nodes []*section.DisplaySection, names []string, depth int) {
		for _, n := range nodes {
			path := append(slices.Clone(names), n.SectionName)
			t.AppendRow(table.Row{
				n.SectionID,
				indent(depth) + n.SectionName,
				section.JoinPath(path),
				mark(slices.Contains(tree.Selected, n.SectionID), "*"),
				mark(slices.Contains(tree.OpenSections, n.SectionID), "open"),
			})
			walk(n.SubSections, path, depth+1)
		}
	}
	walk(tree.Tree, nil, 0)

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d sections, %d selected)\n", len(section.Flatten(tree.Tree)), len(section.Dedupe(tree.Selected)))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func mark(on bool, s string) string {
	if on {
		return s
	}
	return ""
}
