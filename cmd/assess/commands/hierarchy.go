package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/migrascope/pkg/hierarchy"
	"github.com/OFFIS-RIT/migrascope/pkg/store/file"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	hierarchySnapshot string
	hierarchyJSON     bool
)

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Print the containment hierarchy of a snapshot",
	RunE:  runHierarchy,
}

func init() {
	hierarchyCmd.Flags().StringVar(&hierarchySnapshot, "snapshot", "", "Snapshot document (path, s3:// or gs://)")
	hierarchyCmd.Flags().BoolVar(&hierarchyJSON, "json", false, "Print the tree as JSON")
	_ = hierarchyCmd.MarkFlagRequired("snapshot")
}

func runHierarchy(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	router, err := newRouter(ctx, hierarchySnapshot)
	if err != nil {
		return err
	}
	snap, err := file.Read(ctx, router, hierarchySnapshot)
	if err != nil {
		return err
	}

	tree := hierarchy.Build(snap.Objects, snap.Relationships)
	if hierarchyJSON {
		body, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), "", body)
	}
	return printTree(cmd.OutOrStdout(), tree)
}

// printTree writes one line per node, indented by depth, followed by the
// edges left out to break cycles.
func printTree(w io.Writer, tree *hierarchy.Tree) error {
	var walk func(n *hierarchy.Node) error
	walk = func(n *hierarchy.Node) error {
		for _, child := range n.Children {
			line := fmt.Sprintf("%s%s [%s] (%d)\n", strings.Repeat("  ", child.Depth), child.Name, child.Type, child.DescendantCount)
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree.Root); err != nil {
		return err
	}
	for _, c := range tree.Cycles {
		if _, err := fmt.Fprintf(w, "cycle: %s -> %s (%s)\n", c.From, c.To, strings.Join(c.Path, " > ")); err != nil {
			return err
		}
	}
	return nil
}
