package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

// UploadInput is the input schema for the upload_document tool.
type UploadInput struct {
	UserID string `json:"user_id" jsonschema:"the user the document belongs to"`
	Path   string `json:"path" jsonschema:"path of the document to index (pdf, txt, md, docx, html), relative to the server's document root"`
}

// UploadOutput is the output schema for the upload_document tool.
type UploadOutput struct {
	FilePath    string `json:"file_path"`
	Chunks      int    `json:"chunks"`
	Fingerprint string `json:"fingerprint"`
	CacheHit    bool   `json:"cache_hit"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	UserID   string `json:"user_id" jsonschema:"the user whose document is queried"`
	Question string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// HealthInput is the (empty) input schema for the health tool.
type HealthInput struct{}

// HealthOutput is the output schema for the health tool.
type HealthOutput struct {
	Status     string `json:"status"`
	ModelReady bool   `json:"model_ready"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Index a local document and make it the user's active document",
	}, s.handleUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the user's active document",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "health",
		Description: "Report whether the language model has finished loading",
	}, s.handleHealth)
}

// handleUpload handles the upload_document tool invocation.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	f, err := openDocument(s.ports.DocumentRoot, input.Path)
	if err != nil {
		return nil, UploadOutput{}, err
	}
	defer f.Close()

	result, err := s.ports.Chat.UploadDocument(ctx, input.UserID, filepath.Base(input.Path), f)
	if err != nil {
		return nil, UploadOutput{}, err
	}

	return nil, UploadOutput{
		FilePath:    result.Path,
		Chunks:      result.Chunks,
		Fingerprint: result.Fingerprint,
		CacheHit:    result.CacheHit,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, input.UserID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}

// handleHealth handles the health tool invocation.
func (s *Server) handleHealth(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ HealthInput,
) (*mcp.CallToolResult, HealthOutput, error) {
	if !s.ports.Chat.IsModelReady() {
		return nil, HealthOutput{Status: "unhealthy"}, nil
	}
	return nil, HealthOutput{Status: "healthy", ModelReady: true}, nil
}

// openDocument opens path, which must name a file inside root. Relative
// paths are resolved against root. Symlinks may not lead outside it.
func openDocument(root, path string) (*os.File, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: document uploads are disabled", domain.ErrValidation)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving document root: %w", err)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	rel, err := filepath.Rel(absRoot, filepath.Clean(path))
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s is outside the document root", domain.ErrValidation, path)
	}

	dir, err := os.OpenRoot(absRoot)
	if err != nil {
		return nil, fmt.Errorf("opening document root: %w", err)
	}
	defer dir.Close()

	f, err := dir.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	return f, nil
}
