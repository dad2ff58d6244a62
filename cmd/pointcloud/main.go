package main

import (
	"os"

	"github.com/gekko3d/gridparticles/cmd/pointcloud/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
