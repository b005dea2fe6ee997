// quotectl is an offline helper for the quotebook billing engine. It prices
// line items, previews document numbers and lists the package catalog without
// talking to a running server.
package main

import (
	"fmt"
	"io"
	"os"
	"time"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	switch args[0] {
	case "totals":
		return totalsCommand(args[1:], stdout, stderr)
	case "number":
		return numberCommand(args[1:], stdout, stderr, now)
	case "packages":
		return packagesCommand(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "quotectl: unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `usage: quotectl <command> [flags]

commands:
  totals    price line items: --item "description,qty,unit_price[,taxable]" ...
  number    preview a document number: --format QT-{YYYY}-{seq:04d} --seq 7
  packages  list the package catalog
`)
}
