package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides: llm.model is read from RAGSERVE_LLM_MODEL.
const EnvPrefix = "RAGSERVE_"

// EnvProjectRoot overrides the root directory.
const EnvProjectRoot = "PROJECT_ROOT"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRootDir           = "root_dir"
	keyServerHost        = "server.host"
	keyServerPort        = "server.port"
	keyRequestTimeout    = "server.request_timeout"
	keyChatRate          = "server.chat_rate"
	keyChatBurst         = "server.chat_burst"
	keyMaxUploadBytes    = "server.max_upload_bytes"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyRetrievalK        = "retrieval.k"
	keyMaxTokens         = "generation.max_tokens"
	keyRepetitionPenalty = "generation.repetition_penalty"
	keyTemperature       = "generation.temperature"
	keyStopWords         = "generation.stop_words"
	keyMemoryInterval    = "monitor.memory_interval"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
	kindProvider
)

// settingKinds lists every accepted key and how its value is parsed.
var settingKinds = map[string]valueKind{
	keyRootDir:           kindString,
	keyServerHost:        kindString,
	keyServerPort:        kindInt,
	keyRequestTimeout:    kindDuration,
	keyChatRate:          kindFloat,
	keyChatBurst:         kindInt,
	keyMaxUploadBytes:    kindInt,
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyLLMProvider:       kindProvider,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyRetrievalK:        kindInt,
	keyMaxTokens:         kindInt,
	keyRepetitionPenalty: kindFloat,
	keyTemperature:       kindFloat,
	keyStopWords:         kindString,
	keyMemoryInterval:    kindDuration,
}

// SettingsService resolves application settings from defaults, the config
// file and the environment, in increasing order of precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces the environment lookup. Useful for testing.
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		s.getenv = getenv
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnvVar returns the environment variable overriding key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	rootDir := s.getenv(EnvProjectRoot)
	if rootDir == "" {
		rootDir = s.getString(keyRootDir, d.RootDir)
	}

	settings := &domain.AppSettings{
		RootDir: rootDir,
		Server: domain.ServerSettings{
			Host:           s.getString(keyServerHost, d.Server.Host),
			Port:           s.getInt(keyServerPort, d.Server.Port),
			RequestTimeout: s.getDuration(keyRequestTimeout, d.Server.RequestTimeout),
			ChatRate:       s.getFloat(keyChatRate, d.Server.ChatRate, 0),
			ChatBurst:      s.getInt(keyChatBurst, d.Server.ChatBurst),
			MaxUploadBytes: int64(s.getInt(keyMaxUploadBytes, int(d.Server.MaxUploadBytes))),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:  s.getString(keyEmbedBaseURL, ""), // No default - adapters know their endpoints
			APIKey:   s.getString(keyEmbedAPIKey, ""),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:  s.getString(keyLLMBaseURL, ""),
			APIKey:   s.getString(keyLLMAPIKey, ""),
		},
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getIntFloor(keyChunkOverlap, d.Chunking.Overlap, 0),
		},
		Retrieval: domain.RetrievalSettings{
			K: s.getInt(keyRetrievalK, d.Retrieval.K),
		},
		Generation: domain.GenerationSettings{
			MaxTokens:         s.getInt(keyMaxTokens, d.Generation.MaxTokens),
			RepetitionPenalty: s.getFloat(keyRepetitionPenalty, d.Generation.RepetitionPenalty, 0),
			Temperature:       s.getFloat(keyTemperature, d.Generation.Temperature, 0),
			StopWords:         s.getStopWords(keyStopWords, d.Generation.StopWords),
		},
		Monitor: domain.MonitorSettings{
			MemoryInterval: s.getDuration(keyMemoryInterval, d.Monitor.MemoryInterval),
		},
	}

	// Models default per provider, so switching provider alone picks a usable model.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Chunking.Overlap >= settings.Chunking.Size {
		logger.Warn("chunking.overlap %d must be below chunking.size %d, using %d",
			settings.Chunking.Overlap, settings.Chunking.Size, d.Chunking.Overlap)
		settings.Chunking.Overlap = min(d.Chunking.Overlap, settings.Chunking.Size/4)
	}

	return settings, nil
}

// Set validates value for key and persists it to the config file.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrValidation, key)
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrValidation, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every key Set accepts, sorted.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// SettingKeys returns every known configuration key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func parseSetting(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative: %d", n)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		if f < 0 {
			return nil, fmt.Errorf("must not be negative: %g", f)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("not a duration: %q", value)
		}
		if d <= 0 {
			return nil, fmt.Errorf("must be positive: %s", d)
		}
		return d.String(), nil
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return p.String(), nil
	default:
		return value, nil
	}
}

// raw returns the environment override for key, or the stored value.
func (s *SettingsService) raw(key string) (any, bool) {
	if v := s.getenv(EnvVar(key)); v != "" {
		return v, true
	}
	return s.configStore.Get(key)
}

func (s *SettingsService) getString(key, def string) string {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	str, isStr := v.(string)
	if !isStr || str == "" {
		return def
	}
	return str
}

func (s *SettingsService) getInt(key string, def int) int {
	return s.getIntFloor(key, def, 1)
}

// getIntFloor returns the integer at key, or def when absent, malformed or below floor.
func (s *SettingsService) getIntFloor(key string, def, floor int) int {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	var n int
	switch t := v.(type) {
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			logger.Warn("Invalid %s %q, using %d", key, t, def)
			return def
		}
		n = parsed
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	default:
		return def
	}
	if n < floor {
		return def
	}
	return n
}

func (s *SettingsService) getFloat(key string, def, floor float64) float64 {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	var f float64
	switch t := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			logger.Warn("Invalid %s %q, using %g", key, t, def)
			return def
		}
		f = parsed
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		return def
	}
	if f < floor {
		return def
	}
	return f
}

func (s *SettingsService) getDuration(key string, def time.Duration) time.Duration {
	str := s.getString(key, "")
	if str == "" {
		return def
	}
	d, err := time.ParseDuration(str)
	if err != nil || d <= 0 {
		logger.Warn("Invalid %s %q, using %s", key, str, def)
		return def
	}
	return d
}

func (s *SettingsService) getProvider(key string, def domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(strings.ToLower(s.getString(key, "")))
	if !p.IsValid() {
		return def
	}
	return p
}

// StopWordsNone disables stop sequences when set as generation.stop_words.
const StopWordsNone = "none"

// getStopWords reads a comma-separated list of stop sequences. A literal
// \n in the value stands for a newline.
func (s *SettingsService) getStopWords(key string, def []string) []string {
	v, ok := s.raw(key)
	if !ok {
		return def
	}

	var parts []string
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == StopWordsNone {
			return nil
		}
		parts = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			if str, isStr := item.(string); isStr {
				parts = append(parts, str)
			}
		}
	default:
		logger.Warn("Invalid %s %v, using defaults", key, v)
		return def
	}

	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.ReplaceAll(p, `\n`, "\n"); strings.TrimSpace(w) != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return def
	}
	return words
}
