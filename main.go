package main

import (
	"oss.terrastruct.com/pf/lib/xmain"
	"oss.terrastruct.com/pf/pfcli"
)

func main() {
	xmain.Main(pfcli.Run)
}
