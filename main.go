// Package main is the entry point for the purebundle CLI.
package main

import "gooze.dev/pkg/purebundle/cmd"

func main() {
	cmd.Execute()
}
