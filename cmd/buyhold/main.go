package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rpgo/buyhold/internal/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps configuration errors to 2 and data errors to 3.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfig):
		return 2
	case errors.Is(err, domain.ErrData):
		return 3
	default:
		return 1
	}
}
