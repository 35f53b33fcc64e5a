// stackreport - Browser Stack Trace Normalizer
//
// stackreport reads raw browser errors and reports the file, line and column
// of every reportable stack frame.
package main

import (
	"os"

	"github.com/ccollicutt/stackreport/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
