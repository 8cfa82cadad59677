// Package mcp exposes the chat track as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/input"
	"github.com/benepick/benepick/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// SessionsURI is the resource listing active sessions per track.
const SessionsURI = "benepick://sessions"

// DeleteResponse is the structured result of delete_chat_session.
type DeleteResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"The deleted session"`
	Deleted   bool   `json:"deleted" jsonschema_description:"False when the session did not exist"`
}

// Server wraps the chat service and exposes it as an MCP server.
type Server struct {
	chat      *dialog.ChatService
	sessions  *session.Manager
	sanitizer input.Sanitizer
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSanitizer sets the message sanitizer.
func WithSanitizer(san input.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// WithVersion sets the version announced during initialization.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(chat *dialog.ChatService, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		chat:      chat,
		sessions:  sessions,
		sanitizer: input.New(0),
		logger:    logging.NewNop(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("benepick-mcp", s.version)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat_conversation",
		mcp.WithDescription("Send one message to the welfare benefit chat. Omit session_id to start a new conversation."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's message in Korean")),
		mcp.WithString("session_id", mcp.Description("Session returned by a previous call (optional)")),
		mcp.WithOutputSchema[dialog.ChatResult](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	deleteTool := mcp.NewTool("delete_chat_session",
		mcp.WithDescription("Delete a chat session and its history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to delete")),
		mcp.WithOutputSchema[DeleteResponse](),
	)
	s.mcpServer.AddTool(deleteTool, mcp.NewStructuredToolHandler(s.handleDelete))
}

func (s *Server) handleChat(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (dialog.ChatResult, error) {
	var req dialog.ChatRequest
	if err := mapstructure.Decode(args, &req); err != nil {
		return dialog.ChatResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	clean, err := s.sanitizer.Sanitize(req.Message)
	if err != nil {
		s.logger.Warn("mcp chat input rejected", "err", err, "size", len(req.Message))
		return dialog.ChatResult{}, fmt.Errorf("input rejected: %w", err)
	}
	req.Message = clean

	res, err := s.chat.Converse(ctx, req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return dialog.ChatResult{}, errors.New(verr.Message)
		}
		s.logger.Error("mcp chat turn failed", "err", err)
		return dialog.ChatResult{}, fmt.Errorf("chat failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleDelete(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (DeleteResponse, error) {
	var req struct {
		SessionID string `mapstructure:"session_id"`
	}
	if err := mapstructure.Decode(args, &req); err != nil {
		return DeleteResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if req.SessionID == "" {
		return DeleteResponse{}, errors.New("session_id is required")
	}

	err := s.chat.Delete(ctx, req.SessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return DeleteResponse{SessionID: req.SessionID}, nil
	case err != nil:
		return DeleteResponse{}, fmt.Errorf("delete failed: %w", err)
	}
	return DeleteResponse{SessionID: req.SessionID, Deleted: true}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Active sessions per track",
		mcp.WithMIMEType("application/json"),
	), s.handleSessions)
}

func (s *Server) handleSessions(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	counts, err := s.sessions.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
