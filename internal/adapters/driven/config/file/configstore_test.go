package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
	assert.Empty(t, store.Keys())

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr), "no file is written until a value is set")
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("llm = [unterminated"), 0o600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "qwen2.5:0.5b"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "qwen2.5:0.5b", val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 1.2))

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "hello", store.GetString("s"))
		assert.Empty(t, store.GetString("i"))
		assert.Empty(t, store.GetString("missing"))
	})

	t.Run("int", func(t *testing.T) {
		assert.Equal(t, 42, store.GetInt("i"))
		assert.Zero(t, store.GetInt("s"))
		assert.Zero(t, store.GetInt("missing"))
	})

	t.Run("float", func(t *testing.T) {
		assert.InDelta(t, 1.2, store.GetFloat("f"), 1e-9)
		assert.InDelta(t, 42.0, store.GetFloat("i"), 1e-9)
		assert.Zero(t, store.GetFloat("s"))
	})
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("llm.model", "tiny"))
	require.NoError(t, store1.Set("chunking.size", 500))
	require.NoError(t, store1.Set("generation.repetition_penalty", 1.1))
	require.NoError(t, store1.Set("root_dir", "/srv"))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "tiny", store2.GetString("llm.model"))
	assert.Equal(t, 500, store2.GetInt("chunking.size"))
	assert.InDelta(t, 1.1, store2.GetFloat("generation.repetition_penalty"), 1e-9)
	assert.Equal(t, "/srv", store2.GetString("root_dir"))
	assert.Equal(t, []string{"chunking.size", "generation.repetition_penalty", "llm.model", "root_dir"}, store2.Keys())
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "tiny"))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), "[llm]")
	assert.NotContains(t, string(data), "'llm.model'")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
root_dir = "/data"

[server]
port = 9000

[embedding]
provider = "openai"
model = "text-embedding-3-small"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte(content), 0o600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/data", store.GetString("root_dir"))
	assert.Equal(t, 9000, store.GetInt("server.port"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
}

func TestConfigStore_Set_Conflict(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm", "flat"))

	err = store.Set("llm.model", "tiny")
	require.Error(t, err)

	_, ok := store.Get("llm.model")
	assert.False(t, ok, "failed writes are rolled back")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFlattenUnflatten(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flat)

	back, err := unflattenMap(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}
