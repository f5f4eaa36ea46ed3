package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/claude/mapty/internal/logging"
	"github.com/claude/mapty/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "base URL of the mapty server")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	// stdout carries the MCP protocol.
	log := logging.New(os.Stderr, *logLevel, "text")
	log.Info("mapty-mcp starting", "version", Version, "server", *serverURL)

	s := mcp.New(mcp.NewHTTPClient(*serverURL), Version, log)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}
