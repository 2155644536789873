package main

import (
	"github.com/dynfan/dynfan/cmd"
	"github.com/dynfan/dynfan/internal/sensors"
)

func main() {
	// the following is needed to make sure the nvml-lib is shutdown correctly
	// it will do nothing if that lib hasn't been initialized in the first place
	// (or initialization failed, e.g. because no nvidia driver is installed)
	defer sensors.CleanupNvml()
	cmd.Execute()
}
