// Command medgraph builds the medical knowledge graph and answers questions
// over it with hybrid vector and graph retrieval.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
