// Command basicseo runs the site server and its maintenance tasks.
package main

import (
	"os"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	setVersion(version)
	if err := execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
