package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/scaffoldcheck/cmd/scaffoldcheck"
	"github.com/arthur-debert/scaffoldcheck/internal/version"
)

func main() {
	rootCmd := scaffoldcheck.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SCAFFOLDCHECK",
		Section: "1",
		Source:  "scaffoldcheck " + version.Version,
		Manual:  "scaffoldcheck manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
