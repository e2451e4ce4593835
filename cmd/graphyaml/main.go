// graphyaml serializes scene object graphs into multi-document YAML archives.
package main

import (
	"os"

	"github.com/hupe1980/graphyaml/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
