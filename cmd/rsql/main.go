// Package main provides the rsql command-line SQL shell.
package main

import "os"

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		printError(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
