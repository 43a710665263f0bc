package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
)

// newGraphCmd creates the graph command group for inspecting dual graphs.
func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and validate dual-graph files",
	}
	cmd.AddCommand(newGraphInfoCmd())
	cmd.AddCommand(newGraphValidateCmd())
	return cmd
}

// newGraphInfoCmd creates the graph info command.
func newGraphInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Print dual-graph statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadFile(args[0])
			if err != nil {
				printError("%v", err)
				return err
			}

			printKeyValue("nodes", fmt.Sprintf("%d", g.NodeCount()))
			printKeyValue("edges", fmt.Sprintf("%d", g.EdgeCount()))
			printKeyValue("population", fmt.Sprintf("%.0f", g.TotalPopulation()))
			return nil
		},
	}
}

// newGraphValidateCmd creates the graph validate command. With a second
// argument it also checks that the assignment covers the graph.
func newGraphValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [graph] [assignment]",
		Short: "Validate a dual graph and optionally an assignment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			g, err := graph.ReadFile(args[0])
			if err != nil {
				printError("invalid graph: %v", err)
				return err
			}
			logger.Debugf("graph ok: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

			if len(args) == 1 {
				printSuccess("Graph is valid")
				printStats(g.NodeCount(), g.EdgeCount(), 0, false)
				return nil
			}

			assignment, err := partition.ReadAssignmentFile(args[1])
			if err != nil {
				printError("invalid assignment: %v", err)
				return err
			}
			p, err := partition.New(g, assignment)
			if err != nil {
				printError("assignment does not fit graph: %v", err)
				return err
			}

			printSuccess("Graph and assignment are valid")
			printStats(g.NodeCount(), g.EdgeCount(), len(p.Districts()), false)
			return nil
		},
	}
}
