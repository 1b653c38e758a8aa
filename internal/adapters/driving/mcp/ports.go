package mcp

import (
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat uploads documents and answers questions.
	Chat driving.ChatService

	// Settings exposes the resolved configuration. Optional.
	Settings driving.SettingsService

	// DocumentRoot is the directory upload_document may read from.
	// Paths outside it are rejected; when empty, uploads are disabled.
	DocumentRoot string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
