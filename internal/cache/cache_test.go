package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
)

func sampleMap() model.ClassificationMap {
	return model.ClassificationMap{
		"5":   model.AccountTypeTreasury,
		"101": model.AccountTypeClient,
		"301": model.AccountTypeRevenue,
	}
}

func newFileCache(t *testing.T) (*File, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFile(func(tenant string) string {
		return filepath.Join(dir, tenant, "classification.json")
	}), dir
}

func TestCaches_RoundTripAndInvalidate(t *testing.T) {
	fc, _ := newFileCache(t)
	caches := map[string]Cache{
		"memory": NewMemory(),
		"file":   fc,
	}
	ctx := context.Background()

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.Get(ctx, "acme")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Put(ctx, "acme", sampleMap()))
			got, ok, err := c.Get(ctx, "acme")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, sampleMap(), got)

			_, ok, err = c.Get(ctx, "other")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Invalidate(ctx, "acme"))
			_, ok, err = c.Get(ctx, "acme")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Invalidate(ctx, "acme"))
		})
	}
}

func TestCaches_EmptyMap(t *testing.T) {
	fc, _ := newFileCache(t)
	ctx := context.Background()

	for name, c := range map[string]Cache{"memory": NewMemory(), "file": fc} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Put(ctx, "acme", model.ClassificationMap{}))
			got, ok, err := c.Get(ctx, "acme")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	m := sampleMap()
	require.NoError(t, c.Put(ctx, "acme", m))

	m["999"] = model.AccountTypeExpense
	got, _, err := c.Get(ctx, "acme")
	require.NoError(t, err)
	assert.NotContains(t, got, "999")

	got["5"] = model.AccountTypeOther
	again, _, err := c.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeTreasury, again["5"])
}

func TestFile_WritesSortedJSON(t *testing.T) {
	c, dir := newFileCache(t)
	require.NoError(t, c.Put(context.Background(), "acme", sampleMap()))

	data, err := os.ReadFile(filepath.Join(dir, "acme", "classification.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"101\": \"CLIENT\",\n  \"301\": \"REVENUE\",\n  \"5\": \"TREASURY\"\n}", string(data))

	_, err = os.Stat(filepath.Join(dir, "acme", "classification.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFile_RejectsUnknownLabel(t *testing.T) {
	c, dir := newFileCache(t)
	path := filepath.Join(dir, "acme", "classification.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"5":"BANK"}`), 0o644))

	_, _, err := c.Get(context.Background(), "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestFile_CorruptDocument(t *testing.T) {
	c, dir := newFileCache(t)
	path := filepath.Join(dir, "acme", "classification.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, _, err := c.Get(context.Background(), "acme")
	assert.ErrorContains(t, err, "decoding classification map")
}
