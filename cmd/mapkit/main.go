// Command mapkit inspects the AMap configuration of a drift app.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/mapkit/cmd/mapkit/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
