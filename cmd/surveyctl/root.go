package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/parcelarea/internal/adapters/render"
	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
	"github.com/samirrijal/parcelarea/internal/pkg/config"
	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
	"github.com/samirrijal/parcelarea/internal/pkg/logging"
)

const dataURLPrefix = "data:image/png;base64,"

type rootOptions struct {
	logLevel string
	width    int
	height   int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Land survey boundary tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	root.PersistentFlags().IntVar(&opts.width, "width", 0, "plot width in pixels (default from config)")
	root.PersistentFlags().IntVar(&opts.height, "height", 0, "plot height in pixels (default from config)")

	root.AddCommand(newAreaCmd(opts), newPlotCmd(opts), newBearingCmd())
	return root
}

// newService builds a BoundaryService with a local renderer and no cache or queue.
func (o *rootOptions) newService(cmd *cobra.Command) (*usecases.BoundaryService, error) {
	cfg, err := config.Load("surveyctl")
	if err != nil {
		return nil, err
	}
	lg := logging.New(cmd.ErrOrStderr(), o.logLevel, "text")
	cmd.SetContext(logging.WithLogger(cmd.Context(), lg))

	w, h := cfg.Render.Width, cfg.Render.Height
	if o.width > 0 {
		w = o.width
	}
	if o.height > 0 {
		h = o.height
	}
	plotter, err := render.NewPlotter(w, h)
	if err != nil {
		return nil, err
	}
	return usecases.NewBoundaryService(usecases.BoundaryConfig{
		ClosureToleranceM: cfg.Survey.ClosureToleranceM,
		RenderTimeout:     cfg.Render.Timeout(),
	}, plotter, nil, nil), nil
}

// readBoundary decodes a boundary from path, or stdin when path is "-".
func readBoundary(cmd *cobra.Command, path string) (domain.BoundaryInput, error) {
	var in domain.BoundaryInput
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return in, err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

func newAreaCmd(root *rootOptions) *cobra.Command {
	var (
		pngPath   string
		tolerance float64
		strict    bool
		noRender  bool
	)
	cmd := &cobra.Command{
		Use:   "area FILE",
		Short: "Compute the area, diagnostics and closure of a boundary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noRender && pngPath != "" {
				return errors.New("--png cannot be combined with --no-render")
			}
			in, err := readBoundary(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := root.newService(cmd)
			if err != nil {
				return err
			}
			opts := usecases.AnalyzeOptions{
				Render:         !noRender,
				StrictBearings: strict,
			}
			if cmd.Flags().Changed("tolerance") {
				opts.ToleranceM = &tolerance
			}
			report, err := svc.Analyze(cmd.Context(), in, opts)
			if err != nil {
				return err
			}

			image := report.ImageBase64
			report.ImageBase64 = ""
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			if pngPath == "" {
				return nil
			}
			if image == "" {
				return fmt.Errorf("no plot written: %s", report.RenderError)
			}
			png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(image, dataURLPrefix))
			if err != nil {
				return err
			}
			return os.WriteFile(pngPath, png, 0o644)
		},
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "also write the boundary plot to this file")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "closure tolerance in metres (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unreadable bearings")
	cmd.Flags().BoolVar(&noRender, "no-render", false, "skip plot rendering")
	return cmd
}

func newPlotCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Render a boundary plot as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readBoundary(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := root.newService(cmd)
			if err != nil {
				return err
			}
			png, err := svc.Plot(cmd.Context(), in)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(png)
				return err
			}
			return os.WriteFile(out, png, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "boundary.png", `output file, "-" for stdout`)
	return cmd
}

func newBearingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bearing VALUE",
		Short: "Convert a quadrant or azimuth bearing to decimal azimuth degrees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			az, err := geometry.ParseBearing(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", az)
			return nil
		},
	}
}
