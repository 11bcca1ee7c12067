package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ludo-technologies/pqhint/internal/version"
	"github.com/ludo-technologies/pqhint/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	flag "github.com/spf13/pflag"
)

const serverName = "pqhint"

func main() {
	configPath := flag.StringP("config", "c", "", "configuration file (default: discover .pqhint.toml)")
	flag.Parse()

	// Set up logging to stderr (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	handlers := mcp.NewHandlerSet(mcp.NewDependencies(*configPath, os.Stderr))
	mcp.RegisterTools(server, handlers)

	log.Printf("Starting %s MCP server %s\n", serverName, version.Short())
	log.Println("Registered tools:")
	log.Println("  - recommend_edits: Edit hints from the nearest reference project")
	log.Println("  - profile_distance: pq-gram distance of two projects")
	log.Println("")
	log.Println("Server ready - waiting for MCP client connection...")

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
