// Package main provides the volpatch CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "grid":
		err = runGrid(os.Args[2:])
	case "queue":
		err = runQueue(os.Args[2:])
	case "version":
		fmt.Printf("volpatch %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "volpatch %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("volpatch - patch sampling and reconstruction for volumetric arrays")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  grid       Tile a synthetic volume, restore it and report the error")
	fmt.Println("  queue      Simulate weighted patch draws from a preloaded queue")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("Run 'volpatch <command> -h' for command flags.")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
