// Command framectl splits, joins and proxies Content-Length framed message streams, as
// spoken by language servers and other JSON-RPC peers over stdio.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
