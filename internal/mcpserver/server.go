// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the notes directory as tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/clientstate"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/storage"
)

// Server wraps the MCP server with the notes tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	state  clientstate.Store
	ext    string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithExtension sets the note extension used by new_note and rename_note.
func WithExtension(ext string) Option {
	return func(s *Server) {
		s.ext = ext
	}
}

// WithClock overrides the clock used to name new notes.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates an MCP server with all tools registered. Tools without a dir
// argument work in the directory persisted in state.
func New(store storage.Provider, state clientstate.Store, opts ...Option) *Server {
	s := &Server{
		store:  store,
		state:  state,
		ext:    models.DefaultExtension,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"Jotter",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	dirArg := mcp.WithString("dir", mcp.Description("Absolute notes directory (defaults to the last chosen one)"))
	nameArg := mcp.WithString("name", mcp.Required(), mcp.Description("Filename including the extension (e.g. groceries.txt)"))

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the note filenames in the directory."),
		dirArg,
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full text of a note."),
		nameArg, dirArg,
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Replace the full text of a note, creating it when missing."),
		nameArg,
		mcp.WithString("content", mcp.Required(), mcp.Description("New plain-text content")),
		dirArg,
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("rename_note",
		mcp.WithDescription("Rename a note. The extension is appended to new_name."),
		nameArg,
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New display name without extension")),
		dirArg,
	), s.renameNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		nameArg, dirArg,
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("new_note",
		mcp.WithDescription("Create an empty note named after the current minute (YYYYMMDDHHmm)."),
		dirArg,
	), s.newNote)

	s.mcp.AddResource(
		mcp.NewResource(conventionsURI, "Note Conventions",
			mcp.WithResourceDescription("How notes are named and stored."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConventions,
	)

	return s
}

// ServeStdio serves on r and w until ctx is cancelled or input ends.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, r, w)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// directory resolves the dir argument, falling back to the persisted choice.
func (s *Server) directory(ctx context.Context, req mcp.CallToolRequest) (string, error) {
	dir := req.GetString("dir", "")
	if dir == "" {
		var err error
		if dir, err = clientstate.Directory(ctx, s.state); err != nil {
			return "", err
		}
	}
	if dir == "" {
		return "", fmt.Errorf("no directory chosen yet: %w", apperr.ErrInvalid)
	}
	if !filepath.IsAbs(dir) {
		return "", fmt.Errorf("dir %q must be absolute: %w", dir, apperr.ErrInvalid)
	}
	return dir, nil
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("mcp: tool failed", slog.String("tool", tool), slog.String("error", err.Error()))
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", apperr.KindOf(err), err))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.directory(ctx, req)
	if err != nil {
		return s.toolError("list_notes", err), nil
	}
	names, err := s.store.List(ctx, dir)
	if err != nil {
		return s.toolError("list_notes", err), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := s.directory(ctx, req)
	if err != nil {
		return s.toolError("read_note", err), nil
	}
	content, err := s.store.Read(ctx, name, dir)
	if err != nil {
		return s.toolError("read_note", err), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) writeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := s.directory(ctx, req)
	if err != nil {
		return s.toolError("write_note", err), nil
	}
	if err := s.store.Write(ctx, content, name, dir); err != nil {
		return s.toolError("write_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("written: %s", name)), nil
}

func (s *Server) renameNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := req.RequireString("new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := s.directory(ctx, req)
	if err != nil {
		return s.toolError("rename_note", err), nil
	}
	final, err := s.store.Rename(ctx, name, newName, dir)
	if err != nil {
		return s.toolError("rename_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s", final)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := s.directory(ctx, req)
	if err != nil {
		return s.toolError("delete_note", err), nil
	}
	if err := s.store.Remove(ctx, name, dir); err != nil {
		return s.toolError("delete_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", name)), nil
}

func (s *Server) newNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.directory(ctx, req)
	if err != nil {
		return s.toolError("new_note", err), nil
	}
	name := models.TimestampFilename(s.now(), s.ext)
	if err := s.store.Write(ctx, "", name, dir); err != nil {
		return s.toolError("new_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", name)), nil
}

func (s *Server) readConventions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      conventionsURI,
			MIMEType: "text/markdown",
			Text:     Conventions(s.ext),
		},
	}, nil
}
