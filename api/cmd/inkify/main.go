// Command inkify serves the code-image HTTP API and offers offline detection
// and catalog commands.
package main

import "os"

func main() {
	if err := newCLI().rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
