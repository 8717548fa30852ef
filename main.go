package main

import (
	"os"

	"github.com/ruche-hive/ruche/cmd"
	"github.com/ruche-hive/ruche/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
