package main

import (
	"os"

	voxgatecmder "github.com/voxgateco/voxgate/cmd/voxgate"
)

func main() {
	cmd := voxgatecmder.NewVoxgateCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
