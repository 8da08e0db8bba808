package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartpipe/pkg/render/plan"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	output string // output file path; empty writes DOT to stdout
	format string // "dot" or "svg"
}

// newInspectCmd creates the inspect command for visualizing stage execution
// plans.
func newInspectCmd() *cobra.Command {
	opts := inspectOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "inspect [series-type]",
		Short: "Visualize the stage execution plan for a series type",
		Long: `Inspect shows which stages run for a series type and in what order:
one cluster per stage kind (preprocess, process, visual, layout), stages
chained in priority order. Whole-series stages are drawn dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "dot" && opts.format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runInspect(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <type>_plan.<format>, or stdout for dot)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")

	return cmd
}

func runInspect(seriesType string, opts *inspectOpts) error {
	dot := plan.ToDOT(nil, seriesType)

	if opts.format == "dot" && opts.output == "" {
		fmt.Print(dot)
		return nil
	}

	data := []byte(dot)
	if opts.format == "svg" {
		svg, err := plan.RenderSVG(dot)
		if err != nil {
			return err
		}
		data = svg
	}

	path := opts.output
	if path == "" {
		path = seriesType + "_plan." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote execution plan for %s", seriesType)
	printFile(path)
	return nil
}
