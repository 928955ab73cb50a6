package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chaingraphdb/prettyprint"
)

func dotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Render the active graph as Graphviz DOT source",
		Run: func(cmd *cobra.Command, args []string) {
			maxVertices, _ := cmd.Flags().GetInt("max-vertices")
			g, err := currentGraph()
			cliBail(err)
			fmt.Print(prettyprint.RenderGraph(g, prettyprint.Options{ShowAmounts: true, MaxVertices: maxVertices}))
		},
	}
	cmd.Flags().Int("max-vertices", 0, "Cap the number of vertices rendered (0 = unlimited)")
	return cmd
}
