package pfcli

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/pf/lib/version"
	"oss.terrastruct.com/pf/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--watch=false] [--option=0] design.json [result.json]
  %[1]s solve [--gap=0] extent length...
  %[1]s layouts design.json
  %[1]s validate design.json

%[1]s tiles the wall described by design.json with stock panels, picks a layout
and perforates every panel so the facade reproduces the design's image.
The result is written as JSON to result.json, which defaults to design.out.json.

Use - to have %[1]s read the design from stdin or write the result to stdout.

Flags:
%[3]s

Subcommands:
  %[1]s solve extent length... - Lists the ranked ways to cover extent with the given panel lengths
  %[1]s layouts design.json - Lists the ranked layout options of a design, marking the selected one
  %[1]s validate design.json - Validates design.json and its image
  %[1]s version - Prints the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Defaults())
}
