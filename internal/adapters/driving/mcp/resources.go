package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for ragserve resources.
	uriScheme = "ragserve://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "config",
		Name:        "config",
		Description: "Resolved pipeline configuration (API keys masked)",
		MIMEType:    "application/json",
	}, s.handleConfigResource)
}

// configInfo is the JSON shape of the config resource.
type configInfo struct {
	RootDir    string       `json:"root_dir"`
	Embedding  providerInfo `json:"embedding"`
	LLM        providerInfo `json:"llm"`
	ChunkSize  int          `json:"chunk_size"`
	Overlap    int          `json:"chunk_overlap"`
	K          int          `json:"k"`
	MaxTokens  int          `json:"max_tokens"`
	RepPenalty float64      `json:"repetition_penalty"`
}

type providerInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// handleConfigResource returns the current settings.
func (s *Server) handleConfigResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "{}",
			}},
		}, nil
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	info := configInfo{
		RootDir: settings.RootDir,
		Embedding: providerInfo{
			Provider: settings.Embedding.Provider.String(),
			Model:    settings.Embedding.Model,
			BaseURL:  settings.Embedding.BaseURL,
			APIKey:   maskAPIKey(settings.Embedding.APIKey),
		},
		LLM: providerInfo{
			Provider: settings.LLM.Provider.String(),
			Model:    settings.LLM.Model,
			BaseURL:  settings.LLM.BaseURL,
			APIKey:   maskAPIKey(settings.LLM.APIKey),
		},
		ChunkSize:  settings.Chunking.Size,
		Overlap:    settings.Chunking.Overlap,
		K:          settings.Retrieval.K,
		MaxTokens:  settings.Generation.MaxTokens,
		RepPenalty: settings.Generation.RepetitionPenalty,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// maskAPIKey keeps the last four characters of key.
func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
