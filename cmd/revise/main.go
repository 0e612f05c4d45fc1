package main

import "os"

func main() {
	initHelp(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
