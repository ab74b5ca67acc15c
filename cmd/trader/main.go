package main

import (
	"fmt"
	"os"

	"github.com/rustyeddy/advisor/cmd/trader/cmd"
	"github.com/rustyeddy/advisor/pkg/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errors.UserMessage(err))
		os.Exit(cmd.ExitCode(err))
	}
}
