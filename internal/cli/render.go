package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartpipe/pkg/cache"
	"github.com/matzehuels/chartpipe/pkg/config"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // output format: "svg" or "json"
	noCache  bool   // disable the render cache
	progress bool   // show a live chunk-progress display
}

// newRenderCmd creates the render command for turning chart specs into
// output artifacts.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [spec.toml]",
		Short: "Render a chart spec to SVG or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatSVG && opts.format != formatJSON {
				return fmt.Errorf("invalid format: %s (must be 'svg' or 'json')", opts.format)
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: spec name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), json")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "show live progress for large datasets")

	return cmd
}

// runRender loads the spec, runs the pipeline, and writes the artifact.
// Finished artifacts are cached by spec content hash, so re-rendering an
// unchanged spec is a cache lookup.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	chart, err := config.Load(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded spec: %d series", len(chart.Series))

	st, err := chart.State(ctx)
	if err != nil {
		return err
	}

	c := newCache(opts.noCache)
	defer c.Close()
	keyer := cache.NewDefaultKeyer()

	// Artifact cache: skip the whole pass when the finished output exists.
	artifactKey := keyer.ArtifactKey(st.Hash, opts.format)
	if data, hit, err := c.Get(ctx, artifactKey); err == nil && hit {
		path, err := writeArtifact(input, opts, data)
		if err != nil {
			return err
		}
		printSuccess("Rendered %s", input)
		printStats(len(st.Series), 0, 0, true)
		printFile(path)
		return nil
	}

	sched := pipeline.NewScheduler(nil, c, keyer, logger)

	var result *pipeline.Result
	run := func() error {
		var err error
		result, err = sched.Run(ctx, st)
		return err
	}
	if opts.progress {
		err = withChunkProgress(run)
	} else {
		err = run()
	}
	if err != nil {
		return err
	}
	for _, serr := range result.Errors {
		printError("%v", serr)
	}

	data, err := encodeArtifact(chart, st, result, opts.format)
	if err != nil {
		return err
	}
	if result.Stats.FailedCount == 0 {
		_ = c.Set(ctx, artifactKey, data, cache.TTLArtifact)
	}

	path, err := writeArtifact(input, opts, data)
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Rendered %s", input))
	printStats(result.Stats.SeriesCount, result.Stats.FailedCount, result.Stats.Chunks, result.CacheHit)
	printFile(path)
	return nil
}

// encodeArtifact serializes the render result in the requested format.
func encodeArtifact(chart *config.Chart, st *pipeline.ChartState, result *pipeline.Result, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return render.RenderJSON(result.Frames,
			render.WithJSONPass(result.PassID),
			render.WithJSONFrameSize(st.Width, st.Height))
	default:
		return render.RenderSVG(result.Frames,
			render.WithFrameSize(st.Width, st.Height),
			render.WithTitle(chart.Title)), nil
	}
}

// writeArtifact writes data to the output path, deriving the path from the
// input file when --output is not given.
func writeArtifact(input string, opts *renderOpts, data []byte) (string, error) {
	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
