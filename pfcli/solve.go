package pfcli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"oss.terrastruct.com/pf/lib/xmain"
	"oss.terrastruct.com/pf/pflib"
	"oss.terrastruct.com/pf/pftiling"
	"oss.terrastruct.com/xdefer"
)

func solveCmd(ctx context.Context, ms *xmain.State, gap float64) (err error) {
	defer xdefer.Errorf(&err, "failed to solve")

	args := ms.Opts.Flags.Args()[1:]
	if len(args) < 2 {
		return xmain.UsageErrorf("solve must be passed an extent and at least one panel length")
	}
	nums := make([]float64, 0, len(args))
	for _, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return xmain.UsageErrorf("%q is not a number", a)
		}
		nums = append(nums, f)
	}

	solutions := pftiling.Solve(nums[0], gap, nums[1:])
	if len(solutions) == 0 {
		ms.Log.Warn.Printf("no combination of %v fits %g", nums[1:], nums[0])
		return nil
	}
	return printSolutions(ms, solutions)
}

func printSolutions(ms *xmain.State, solutions []pftiling.Solution) error {
	tw := tabwriter.NewWriter(ms.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPANELS\tSIZES\tTOTAL\tCOVERAGE\tSOLUTION")
	for i, s := range solutions {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%g\t%.1f%%\t%s\n", i, s.NumPanels, s.DistinctSizes(), s.Total, s.Coverage*100, s.Describe())
	}
	return tw.Flush()
}

func layoutsCmd(ctx context.Context, ms *xmain.State, o overrides) (err error) {
	defer xdefer.Errorf(&err, "failed to list layouts")

	ms.Opts = xmain.NewOpts(ms.Env, ms.Log, ms.Opts.Flags.Args()[1:])
	if len(ms.Opts.Args) != 1 {
		return xmain.UsageErrorf("layouts must be passed exactly one design file")
	}
	inputPath := ms.Opts.Args[0]
	if inputPath != "-" {
		inputPath = ms.AbsPath(inputPath)
	}

	cfg, err := loadConfig(ms, inputPath, o)
	if err != nil {
		return err
	}
	selected := cfg.SelectedOption()
	// The selected option is only marked here, so an out of range one is
	// not an error.
	cfg.Layout.Option = nil
	res, err := pflib.Design(ctx, cfg, nil)
	if err != nil {
		return err
	}
	if len(res.Options) == 0 {
		ms.Log.Warn.Printf("no combination of panel sizes fits the wall")
		return nil
	}

	tw := tabwriter.NewWriter(ms.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPTION\tPANELS\tSKUS\tCOVERAGE\tCOLUMNS\tROWS")
	for i, opt := range res.Options {
		mark := ""
		if i == selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%d\t%d\t%.1f%%\t%s\t%s\n", i, mark, opt.NumPanels, opt.DistinctSizes, opt.Coverage*100, opt.Width.Describe(), opt.Height.Describe())
	}
	return tw.Flush()
}
