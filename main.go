// Package main is the entry point for the cslogstats CLI tool, which parses
// Counter-Strike server logs into player, round and weapon reports.
package main

import "github.com/pable/cs-logstats/cmd"

func main() {
	cmd.Execute()
}
