package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/attire/internal/generator"
)

func TestParseGarmentFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denim-jacket.png")
	require.NoError(t, os.WriteFile(path, []byte("imagebytes"), 0644))

	sel, err := parseGarmentFlag("outer=" + path)
	require.NoError(t, err)
	assert.Equal(t, "outer", sel.Category)
	assert.Equal(t, "denim-jacket", sel.Name, "name comes from the file name")
	assert.Contains(t, sel.ImageRef, "data:image/png;base64,")
}

func TestParseGarmentFlagRejectsBareSpec(t *testing.T) {
	_, err := parseGarmentFlag("just-a-path.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category=path")
}

func TestParseGarmentFlagMissingFile(t *testing.T) {
	_, err := parseGarmentFlag("top=" + filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestWriteImageRef(t *testing.T) {
	t.Run("data reference decodes to the raw image", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "look.png")
		ref := generator.EncodeDataRef("image/png", []byte("imagebytes"))

		require.NoError(t, writeImageRef(ref, out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, []byte("imagebytes"), data)
	})

	t.Run("opaque reference is written as text", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "look.txt")
		require.NoError(t, writeImageRef("gen://scripted/abcd1234", out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "gen://scripted/abcd1234\n", string(data))
	})
}
