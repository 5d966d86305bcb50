// Command wren runs the research-assistant agent core against a local
// Ollama server and an external JSON-RPC tool server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
