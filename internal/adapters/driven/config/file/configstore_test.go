package file

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	dir, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pagelens"), dir)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "claude-test"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "claude-test", val)
	assert.Equal(t, "claude-test", store.GetString("llm.model"))

	_, ok = store.Get("llm.missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("tiling.max_tile_bytes", 800000))
	require.NoError(t, store.Set("tiling.shrink_ratio", 0.75))
	require.NoError(t, store.Set("retry.backoff_multiplier", 2))

	assert.Equal(t, 800000, store.GetInt("tiling.max_tile_bytes"))
	assert.InDelta(t, 0.75, store.GetFloat("tiling.shrink_ratio"), 1e-9)
	assert.InDelta(t, 2.0, store.GetFloat("retry.backoff_multiplier"), 1e-9)

	// wrong types fall back to zero values
	assert.Equal(t, 0, store.GetInt("llm.model"))
	assert.Zero(t, store.GetFloat("llm.model"))
	assert.Equal(t, "", store.GetString("tiling.max_tile_bytes"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("tiling.max_tile_bytes", 500000))
	require.NoError(t, store.Set("tiling.quality_ladder", []int{90, 70}))
	require.NoError(t, store.Set("tiling.shrink_ratio", 0.5))
	require.NoError(t, store.Set("retry.delay", "3s"))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 500000, reopened.GetInt("tiling.max_tile_bytes"))
	assert.InDelta(t, 0.5, reopened.GetFloat("tiling.shrink_ratio"), 1e-9)
	assert.Equal(t, "3s", reopened.GetString("retry.delay"))
	ladder, ok := reopened.Get("tiling.quality_ladder")
	require.True(t, ok)
	assert.Equal(t, []any{int64(90), int64(70)}, ladder)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "claude-test"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "claude-test")
	assert.NotContains(t, string(data), "llm.model")
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[tiling]
max_tile_bytes = 600000
quality_ladder = [85, 65]

[retry]
max_retries = 4
backoff_multiplier = 1.5
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 600000, store.GetInt("tiling.max_tile_bytes"))
	assert.Equal(t, 4, store.GetInt("retry.max_retries"))
	assert.InDelta(t, 1.5, store.GetFloat("retry.backoff_multiplier"), 1e-9)
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "x"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions differ on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["llm.max_tokens"] = 1000
	store.mu.Unlock()

	require.NoError(t, store.Save())

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1000, reopened.GetInt("llm.max_tokens"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("worker.key%d", n)
			assert.NoError(t, store.Set(key, n))
			assert.Equal(t, n, store.GetInt(key))
		}(i)
	}
	wg.Wait()
}

func TestFlattenAndNestMap(t *testing.T) {
	nested := map[string]any{
		"tiling": map[string]any{"overlap": int64(200)},
		"llm":    map[string]any{"model": "m", "limits": map[string]any{"rps": 1.5}},
		"top":    "v",
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{
		"tiling.overlap": int64(200),
		"llm.model":      "m",
		"llm.limits.rps": 1.5,
		"top":            "v",
	}, flat)
	assert.Equal(t, nested, nestMap(flat))
}

func TestNestMap_ValueShadowsTable(t *testing.T) {
	nested := nestMap(map[string]any{"a": 1, "a.b": 2})

	assert.Equal(t, map[string]any{"a": 1}, nested)
}
