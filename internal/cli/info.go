package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleavegraph/cleave/pkg/metisio"
)

// infoCommand creates the info command for inspecting graph files.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <graph-file>",
		Short: "Print statistics about a METIS graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := metisio.ReadGraphFile(args[0])
			if err != nil {
				return err
			}

			minDeg, maxDeg := 0, 0
			if g.N() > 0 {
				minDeg = g.Degree(0)
				for u := 0; u < g.N(); u++ {
					d := g.Degree(u)
					if d < minDeg {
						minDeg = d
					}
					if d > maxDeg {
						maxDeg = d
					}
				}
			}

			printKeyValue("vertices", fmt.Sprintf("%d", g.N()))
			printKeyValue("edges", fmt.Sprintf("%d", g.M()))
			printKeyValue("degree", fmt.Sprintf("min %d, max %d", minDeg, maxDeg))
			if g.HasVertexWeights() {
				printKeyValue("vertex weight", fmt.Sprintf("%d total", g.TotalVertexWeight()))
			}
			if g.HasEdgeWeights() {
				printKeyValue("edge weight", fmt.Sprintf("%d total", g.TotalEdgeWeight()))
			}
			return nil
		},
	}
}
