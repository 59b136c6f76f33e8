package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

func writeTheme(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+".toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDirectoryLoader_BuiltIns(t *testing.T) {
	ctx := context.Background()
	loader := NewDirectoryLoader("", nil)

	for _, name := range []string{"dark", "light", "terminal"} {
		t.Run(name, func(t *testing.T) {
			theme, err := loader.Load(ctx, name)
			require.NoError(t, err)
			assert.Equal(t, name, theme.Name)
			assert.NoError(t, theme.Validate())
			assert.NotEmpty(t, theme.List.Markers)
		})
	}

	t.Run("light inherits from dark", func(t *testing.T) {
		dark, err := loader.Load(ctx, "dark")
		require.NoError(t, err)
		light, err := loader.Load(ctx, "light")
		require.NoError(t, err)

		assert.Equal(t, "dark", light.Extends)
		assert.Equal(t, entities.Color("#f8f8f8"), light.Background())
		assert.Equal(t, dark.Headings.H1.Prefix, light.Headings.H1.Prefix)
		assert.Equal(t, dark.Layout, light.Layout)
		assert.Equal(t, "github", light.Code.Style)
		assert.Equal(t, dark.Code.PaddingHorizontal, light.Code.PaddingHorizontal)
	})

	t.Run("terminal keeps default colors", func(t *testing.T) {
		theme, err := loader.Load(ctx, "terminal")
		require.NoError(t, err)
		assert.Empty(t, theme.Background())
		assert.Equal(t, entities.FooterProgressBar, theme.Footer.Kind)
	})

	t.Run("unknown theme", func(t *testing.T) {
		_, err := loader.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrThemeNotFound)
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		_, err := loader.Load(ctx, "../dark")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid theme name")
	})
}

func TestDirectoryLoader_CustomThemes(t *testing.T) {
	ctx := context.Background()

	t.Run("extends a built-in", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "ocean", `
extends = "dark"

[palette]
default = { background = "#001f3f" }

[list]
markers = ["-"]
`)
		loader := NewDirectoryLoader(dir, nil)

		theme, err := loader.Load(ctx, "ocean")
		require.NoError(t, err)
		assert.Equal(t, "ocean", theme.Name, "name defaults to the file name")
		assert.Equal(t, entities.Color("#001f3f"), theme.Palette.Default.Background)
		assert.Equal(t, entities.Color("#e6e6e6"), theme.Palette.Default.Foreground, "unset keys are inherited")
		assert.Equal(t, []string{"-"}, theme.List.Markers)
		assert.NoError(t, theme.Validate())
	})

	t.Run("loading a child does not modify the parent", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "base", `
[list]
markers = ["a", "b"]
`)
		writeTheme(t, dir, "child", `
extends = "base"
[list]
markers = ["c"]
`)
		loader := NewDirectoryLoader(dir, nil)

		_, err := loader.Load(ctx, "child")
		require.NoError(t, err)
		base, err := loader.Load(ctx, "base")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, base.List.Markers)
	})

	t.Run("custom theme shadows a built-in", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "light", `
[palette]
default = { foreground = "#101010" }
`)
		theme, err := NewDirectoryLoader(dir, nil).Load(ctx, "light")
		require.NoError(t, err)
		assert.Equal(t, entities.Color("#101010"), theme.Palette.Default.Foreground)
		assert.Empty(t, theme.Palette.Default.Background)
	})

	t.Run("circular inheritance", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "a", `extends = "b"`)
		writeTheme(t, dir, "b", `extends = "a"`)

		_, err := NewDirectoryLoader(dir, nil).Load(ctx, "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "circular reference detected in theme hierarchy: a")
	})

	t.Run("self inheritance", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "loop", `extends = "loop"`)

		_, err := NewDirectoryLoader(dir, nil).Load(ctx, "loop")
		assert.ErrorContains(t, err, "circular reference")
	})

	t.Run("missing parent", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "orphan", `extends = "nowhere"`)

		_, err := NewDirectoryLoader(dir, nil).Load(ctx, "orphan")
		assert.ErrorIs(t, err, ErrThemeNotFound)
		assert.ErrorContains(t, err, "loading parent theme 'nowhere'")
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "typo", `
[palette]
heding = { foreground = "#ffffff" }
`)
		_, err := NewDirectoryLoader(dir, nil).Load(ctx, "typo")
		assert.ErrorContains(t, err, "unknown keys: palette.heding")
	})

	t.Run("invalid toml", func(t *testing.T) {
		dir := t.TempDir()
		writeTheme(t, dir, "broken", `name = `)

		_, err := NewDirectoryLoader(dir, nil).Load(ctx, "broken")
		assert.ErrorContains(t, err, "parsing theme")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewDirectoryLoader("", nil).Load(cancelled, "dark")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDirectoryLoader_LoadFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("named after the file", func(t *testing.T) {
		path := writeTheme(t, dir, "My_Talk Theme", `
extends = "terminal"
[code]
style = "dracula"
`)
		theme, err := NewDirectoryLoader("", nil).LoadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "my-talk-theme", theme.Name)
		assert.Equal(t, "dracula", theme.Code.Style)
		assert.Equal(t, entities.FooterProgressBar, theme.Footer.Kind)
		assert.NoError(t, theme.Validate())
	})

	t.Run("explicit name wins", func(t *testing.T) {
		path := writeTheme(t, dir, "file", `name = "named"`)
		theme, err := NewDirectoryLoader("", nil).LoadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "named", theme.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewDirectoryLoader("", nil).LoadFile(ctx, filepath.Join(dir, "none.toml"))
		assert.ErrorContains(t, err, "reading theme file")
	})
}

func TestDirectoryLoader_List(t *testing.T) {
	ctx := context.Background()

	t.Run("built-ins only", func(t *testing.T) {
		themes, err := NewDirectoryLoader(filepath.Join(t.TempDir(), "absent"), nil).List(ctx)
		require.NoError(t, err)
		require.Len(t, themes, 3)

		assert.Equal(t, entities.ThemeInfo{Name: "dark", DisplayName: "Dark", BuiltIn: true}, themes[0])
		assert.Equal(t, entities.ThemeInfo{Name: "light", DisplayName: "Light", Extends: "dark", BuiltIn: true}, themes[1])
		assert.Equal(t, "terminal", themes[2].Name)
	})

	t.Run("custom themes", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTheme(t, dir, "solarized-dark", `extends = "dark"`)
		writeTheme(t, dir, "broken", `extends = `)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.toml"), 0o755))

		themes, err := NewDirectoryLoader(dir, nil).List(ctx)
		require.NoError(t, err)

		names := make([]string, len(themes))
		for i, info := range themes {
			names[i] = info.Name
		}
		assert.Equal(t, []string{"dark", "light", "solarized-dark", "terminal"}, names)
		assert.Equal(t, entities.ThemeInfo{
			Name:        "solarized-dark",
			DisplayName: "Solarized Dark",
			Extends:     "dark",
			Path:        path,
		}, themes[2])
	})
}

func TestDirectoryLoader_Exists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeTheme(t, dir, "custom", `name = "custom"`)
	loader := NewDirectoryLoader(dir, nil)

	assert.True(t, loader.Exists(ctx, "dark"))
	assert.True(t, loader.Exists(ctx, "custom"))
	assert.False(t, loader.Exists(ctx, "missing"))
	assert.False(t, loader.Exists(ctx, ""))
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"dark":           "Dark",
		"solarized-dark": "Solarized Dark",
		"my_theme":       "My Theme",
	}
	for name, want := range tests {
		assert.Equal(t, want, DisplayName(name), name)
	}
}
