package main

import (
	"fmt"
	"os"

	"github.com/AnyUserName/memecap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "memecap: %v\n", err)
		os.Exit(1)
	}
}
