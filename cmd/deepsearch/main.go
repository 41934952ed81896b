package main

import (
	"fmt"
	"os"

	"github.com/dohuyhoang93/deepsearch-go/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "deepsearch: %v\n", err)
		os.Exit(1)
	}
}
