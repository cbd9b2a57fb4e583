package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		handleRun(os.Args[2:])
	case "groups":
		handleGroups(os.Args[2:])
	case "clear-ids":
		handleClearIDs(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		printVersion()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := `Takeoff CLI - Quantity takeoff for piping networks

Usage:
  takeoff <command> [options]

Available Commands:
  run         Run a full takeoff over a model document
  groups      Show connectivity groups of a model document
  clear-ids   Reset the persisted identifier state
  help        Show this help message
  version     Show version information

Examples:
  # Run a takeoff and print the pivots
  takeoff run --model network.yaml

  # Run against a specific identifier state file
  takeoff run --model network.yaml --state /var/lib/takeoff/ids.state

  # Show connectivity group labels
  takeoff groups --model network.yaml

  # Start numbering over
  takeoff clear-ids --state /var/lib/takeoff/ids.state
`
	fmt.Print(usage)
}

func printVersion() {
	fmt.Println("Takeoff CLI v1.0.0")
}
