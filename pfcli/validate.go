package pfcli

import (
	"context"

	"oss.terrastruct.com/pf/lib/xmain"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/xdefer"
)

func validateCmd(ctx context.Context, ms *xmain.State, o overrides) (err error) {
	defer xdefer.Errorf(&err, "failed to validate")

	ms.Opts = xmain.NewOpts(ms.Env, ms.Log, ms.Opts.Flags.Args()[1:])
	if len(ms.Opts.Args) == 0 {
		return xmain.UsageErrorf("validate must be passed a design file to be validated")
	}

	inputPath := ms.Opts.Args[0]
	if inputPath != "-" {
		inputPath = ms.AbsPath(inputPath)
	}

	cfg, err := loadConfig(ms, inputPath, o)
	if err != nil {
		return err
	}
	if fp := cfg.ImagePath(); fp != "" {
		_, err = pfimage.Load(fp)
		if err != nil {
			return err
		}
	}
	ms.Log.Success.Printf("%s is valid", ms.HumanPath(inputPath))
	return nil
}
