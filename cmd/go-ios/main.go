// Command go-ios runs the go-ios binary shipped for the current platform,
// forwarding all arguments, standard streams and signals to it and exiting
// with its exit code.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	code, err := run(context.Background(), os.Args[1:], newLauncher())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
