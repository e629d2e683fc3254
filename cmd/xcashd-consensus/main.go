package main

import (
	"github.com/xcash-project/xcash-temp-consensus/cmd/xcashd-consensus/cmd"
)

func main() {
	cmd.Execute()
}
