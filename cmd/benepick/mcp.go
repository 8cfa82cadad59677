package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the chat track as MCP tools over standard input/output, so
AI agents can search welfare policies on a user's behalf.

Tools:
- chat_conversation: send a message, optionally continuing a session
- delete_chat_session: drop a session and its history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries JSON-RPC; keep stray log output off it.
		log.SetOutput(os.Stderr)

		app, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		app.Logger.Info("starting MCP server (stdio)")
		return app.MCPServer().ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
