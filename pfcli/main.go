package pfcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/pf/lib/log"
	"oss.terrastruct.com/pf/lib/version"
	"oss.terrastruct.com/pf/lib/xmain"
	"oss.terrastruct.com/pf/pfconfig"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/pf/pflib"
	"oss.terrastruct.com/pf/pftarget"
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.WithDefault(ctx)
	// These should be kept up-to-date with help()
	watchFlag, err := ms.Opts.Bool("PF_WATCH", "watch", "w", false, "watch the design file and its image for changes and redesign on every change.")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = new(bool)
	}
	optionFlag, err := ms.Opts.Int64("PF_OPTION", "option", "o", 0, "index of the ranked layout option to perforate. Overrides layout.option of the design file.")
	if err != nil {
		return err
	}
	thresholdFlag, err := ms.Opts.Float64("PF_THRESHOLD", "threshold", "t", pfconfig.DEFAULT_THRESHOLD, "brightness gate in [0, 255]. Points brighter than this stay solid. Overrides apertures.threshold.")
	if err != nil {
		return err
	}
	gammaFlag, err := ms.Opts.Float64("PF_GAMMA", "gamma", "g", pfconfig.DEFAULT_GAMMA, "exponent applied to darkness before it is mapped to a diameter. Below 1 favours larger holes. Overrides apertures.gamma.")
	if err != nil {
		return err
	}
	brightnessFlag, err := ms.Opts.Float64("PF_BRIGHTNESS", "brightness", "b", 0, "image brightness adjustment in [-100, 100]. Overrides image.brightness.")
	if err != nil {
		return err
	}
	contrastFlag, err := ms.Opts.Float64("PF_CONTRAST", "contrast", "c", 0, "image contrast adjustment in [-100, 100]. Overrides image.contrast.")
	if err != nil {
		return err
	}
	invertFlag, err := ms.Opts.Bool("PF_INVERT", "invert", "i", false, "invert the image so bright areas are perforated. Overrides image.invert.")
	if err != nil {
		return err
	}
	patternFlag := ms.Opts.String("PF_PATTERN", "pattern", "p", pftarget.PATTERN_RECTANGULAR, "aperture lattice: rectangular or staggered. Overrides grid.pattern.")
	gapFlag, err := ms.Opts.Float64("PF_GAP", "gap", "", 0, "joint between neighbouring panels used by the solve subcommand.")
	if err != nil {
		return err
	}
	timeoutFlag, err := ms.Opts.Int64("PF_TIMEOUT", "timeout", "", 120, "the maximum number of seconds a design may take before pf gives up.")
	if err != nil {
		return err
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
		ms.Env.Setenv("DEBUG", "1")
	}

	// Flags that were neither passed nor set in the environment leave the
	// design file alone.
	o := overrides{}
	if isSet(ms, "PF_OPTION", "option") {
		o.option = optionFlag
	}
	if isSet(ms, "PF_THRESHOLD", "threshold") {
		o.threshold = thresholdFlag
	}
	if isSet(ms, "PF_GAMMA", "gamma") {
		o.gamma = gammaFlag
	}
	if isSet(ms, "PF_BRIGHTNESS", "brightness") {
		o.brightness = brightnessFlag
	}
	if isSet(ms, "PF_CONTRAST", "contrast") {
		o.contrast = contrastFlag
	}
	if isSet(ms, "PF_INVERT", "invert") {
		o.invert = invertFlag
	}
	if isSet(ms, "PF_PATTERN", "pattern") {
		o.pattern = patternFlag
	}

	if len(ms.Opts.Flags.Args()) > 0 {
		switch ms.Opts.Flags.Arg(0) {
		case "solve":
			return solveCmd(ctx, ms, *gapFlag)
		case "layouts":
			return layoutsCmd(ctx, ms, o)
		case "validate":
			return validateCmd(ctx, ms, o)
		case "version":
			if len(ms.Opts.Flags.Args()) > 1 {
				return xmain.UsageErrorf("version subcommand accepts no arguments")
			}
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
	}

	if len(ms.Opts.Flags.Args()) == 0 {
		if *versionFlag {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(ms.Opts.Flags.Args()) >= 3 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	inputPath := ms.Opts.Flags.Arg(0)
	var outputPath string
	if len(ms.Opts.Flags.Args()) >= 2 {
		outputPath = ms.Opts.Flags.Arg(1)
	} else if inputPath == "-" {
		outputPath = "-"
	} else {
		outputPath = renameExt(inputPath, ".out.json")
	}
	if inputPath != "-" {
		inputPath = ms.AbsPath(inputPath)
	}
	if outputPath != "-" {
		outputPath = ms.AbsPath(outputPath)
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		w, err := newWatcher(ctx, ms, watcherOpts{
			inputPath:  inputPath,
			outputPath: outputPath,
			overrides:  o,
			timeout:    time.Duration(*timeoutFlag) * time.Second,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, time.Duration(*timeoutFlag)*time.Second)
	defer cancel()

	start := time.Now()
	cfg, err := loadConfig(ms, inputPath, o)
	if err != nil {
		return err
	}
	img, err := loadImage(ms, cfg)
	if err != nil {
		return err
	}
	res, err := pflib.Design(ctx, cfg, img)
	if err != nil {
		return fmt.Errorf("failed to design %s: %w", ms.HumanPath(inputPath), err)
	}
	err = writeResult(ms, outputPath, res)
	if err != nil {
		return err
	}
	report(ms, res)
	ms.Log.Success.Printf("successfully designed %s to %s in %s", ms.HumanPath(inputPath), ms.HumanPath(outputPath), time.Since(start))
	return nil
}

// overrides are the design values set from flags or the environment. nil
// fields keep the design file's value.
type overrides struct {
	option     *int64
	threshold  *float64
	gamma      *float64
	brightness *float64
	contrast   *float64
	invert     *bool
	pattern    *string
}

func (o overrides) apply(cfg *pfconfig.Config) {
	if o.option != nil {
		opt := int(*o.option)
		cfg.Layout.Option = &opt
	}
	if o.threshold != nil {
		cfg.Apertures.Threshold = o.threshold
	}
	if o.gamma != nil {
		cfg.Apertures.Gamma = o.gamma
	}
	if o.brightness != nil {
		cfg.Image.Brightness = *o.brightness
	}
	if o.contrast != nil {
		cfg.Image.Contrast = *o.contrast
	}
	if o.invert != nil {
		cfg.Image.Invert = *o.invert
	}
	if o.pattern != nil {
		cfg.Grid.Pattern = *o.pattern
	}
}

func isSet(ms *xmain.State, envKey, flag string) bool {
	if ms.Env.Getenv(envKey) != "" {
		return true
	}
	f := ms.Opts.Flags.Lookup(flag)
	return f != nil && f.Changed
}

// loadConfig reads the design at inputPath, applies o and validates the
// result.
func loadConfig(ms *xmain.State, inputPath string, o overrides) (*pfconfig.Config, error) {
	b, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}
	cfg, err := pfconfig.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ms.HumanPath(inputPath), err)
	}
	if inputPath == "-" {
		cfg.SetDir(".")
	} else {
		cfg.SetDir(filepath.Dir(inputPath))
	}
	o.apply(cfg)
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid design %s: %w", ms.HumanPath(inputPath), err)
	}
	return cfg, nil
}

// loadImage returns the design's source image, or nil when it has none.
func loadImage(ms *xmain.State, cfg *pfconfig.Config) (image.Image, error) {
	fp := cfg.ImagePath()
	if fp == "" {
		ms.Log.Warn.Printf("design has no image: panels will not be perforated")
		return nil, nil
	}
	return pfimage.Load(fp)
}

func writeResult(ms *xmain.State, outputPath string, res *pflib.Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return ms.WritePath(outputPath, b)
}

func report(ms *xmain.State, res *pflib.Result) {
	opt, ok := res.SelectedOption()
	if !ok {
		ms.Log.Warn.Printf("no combination of panel sizes fits the wall")
		return
	}
	ms.Log.Info.Printf("option %d of %d: %s", res.Selected, len(res.Options), opt.Description)
	ms.Log.Info.Printf("%d panels, %d apertures", len(res.Grid.Panels), res.NumApertures())
}

func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}
