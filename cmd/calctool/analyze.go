package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/njchilds90/calctool/analysis"
	"github.com/njchilds90/calctool/internal/render"
)

// errAnalysisFailed is returned after the failure has been printed.
var errAnalysisFailed = errors.New("analysis failed")

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		mode           string
		point, tangent float64
		from, to       float64
		rects          int
		asJSON, plain  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <function>",
		Short: "Analyze a function of x",
		Example: `  calctool analyze "sin(x)/x" --mode limit --point 0
  calctool analyze "x^2" --mode derivative --at 1
  calctool analyze "x^3 - 3x" --mode critical_points
  calctool analyze "x" --mode integral --from -2 --to 2 --rects 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.mustEngine()
			if err != nil {
				return err
			}
			m, err := analysis.ParseMode(mode)
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, strings.Join(analysis.ModeNames(), ", "))
			}

			req := analysis.Request{FunctionText: args[0], Mode: m}
			flags := cmd.Flags()
			if flags.Changed("point") {
				req.Parameters.Point = analysis.Float64(point)
			}
			if flags.Changed("at") {
				req.Parameters.TangentPoint = analysis.Float64(tangent)
			}
			if flags.Changed("from") {
				req.Parameters.IntervalStart = analysis.Float64(from)
			}
			if flags.Changed("to") {
				req.Parameters.IntervalEnd = analysis.Float64(to)
			}
			if flags.Changed("rects") {
				req.Parameters.RectangleCount = analysis.Int(rects)
			}

			ctx := analysis.WithRequestID(cmd.Context(), uuid.NewString())
			res := engine.Envelope(ctx, req)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				styles := render.DefaultStyles()
				if plain {
					styles = render.PlainStyles()
				}
				fmt.Fprint(out, render.Result(res, styles))
			}
			if res.ErrorMessage != nil {
				return errAnalysisFailed
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&mode, "mode", "m", "limit", "Analysis mode: limit, derivative, critical_points, integral")
	f.Float64Var(&point, "point", analysis.DefaultPoint, "Limit point p")
	f.Float64Var(&tangent, "at", analysis.DefaultTangentPoint, "Tangent point t")
	f.Float64Var(&from, "from", analysis.DefaultIntervalStart, "Interval start a")
	f.Float64Var(&to, "to", analysis.DefaultIntervalEnd, "Interval end b")
	f.IntVarP(&rects, "rects", "n", analysis.DefaultRectangleCount, "Number of Riemann rectangles")
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON")
	f.BoolVar(&plain, "plain", false, "Disable colors and borders")
	return cmd
}
