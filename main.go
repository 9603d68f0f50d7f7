package main

import (
	"github.com/driftsync/driftsync/cmd"
	"github.com/driftsync/driftsync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
