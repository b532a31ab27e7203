// Command apriz appraises crates.io packages against a configurable risk
// policy: gather facts from the registry and five secondary providers,
// flatten them into metrics, evaluate a CEL policy, and print the verdict.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
