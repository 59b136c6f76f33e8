package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
	"github.com/fredcamaral/slideterm/internal/test/builders"
)

// Mock implementations
type MockDocumentParser struct {
	mock.Mock
}

func (m *MockDocumentParser) Parse(ctx context.Context, content []byte) (*ports.Document, error) {
	args := m.Called(ctx, content)
	if doc := args.Get(0); doc != nil {
		return doc.(*ports.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

type presentationFixture struct {
	parser  *MockDocumentParser
	loader  *MockThemeLoader
	cache   *MockThemeCache
	service *PresentationService
}

func newPresentationFixture() *presentationFixture {
	f := &presentationFixture{
		parser: &MockDocumentParser{},
		loader: &MockThemeLoader{},
		cache:  &MockThemeCache{},
	}
	compiler := NewCompiler(&MockImageStore{}, CompilerOptions{}, nil)
	themes := NewThemeService(f.loader, f.cache, nil)
	f.service = NewPresentationService(f.parser, compiler, themes, "dark", nil)
	return f
}

func writePresentation(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slides.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPresentationService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("empty path", func(t *testing.T) {
		f := newPresentationFixture()
		_, err := f.service.Load(ctx, "")
		assert.EqualError(t, err, "presentation path cannot be empty")
	})

	t.Run("missing file", func(t *testing.T) {
		f := newPresentationFixture()
		_, err := f.service.Load(ctx, "/nonexistent/slides.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "presentation file not found")
	})

	t.Run("compiles a file", func(t *testing.T) {
		f := newPresentationFixture()
		content := "---\ntitle: Demo\n---\nhello\n"
		path := writePresentation(t, content)

		doc := builders.NewDocumentBuilder().
			WithFrontMatter("title: Demo").
			Paragraph("hello").
			Build()
		f.parser.On("Parse", ctx, []byte(content)).Return(doc, nil)
		f.cache.On("Get", "dark").Return(createMockTheme("dark"), true)

		presentation, err := f.service.Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, path, presentation.Path)
		assert.Equal(t, "Demo", presentation.Metadata.Title)
		assert.Equal(t, "dark", presentation.Theme.Name)
		require.Equal(t, 2, presentation.SlideCount(), "intro slide plus one content slide")
		assert.True(t, presentation.Slides[0].Options.HideFooter)
		f.parser.AssertExpectations(t)
	})
}

func TestPresentationService_Compile(t *testing.T) {
	ctx := context.Background()

	t.Run("parser errors are wrapped", func(t *testing.T) {
		f := newPresentationFixture()
		f.parser.On("Parse", ctx, []byte("x")).Return(nil, errors.New("boom"))

		_, err := f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		assert.EqualError(t, err, "parsing presentation: boom")
	})

	t.Run("compile errors keep their kind", func(t *testing.T) {
		f := newPresentationFixture()
		f.parser.On("Parse", ctx, []byte("")).Return(builders.NewDocumentBuilder().Build(), nil)
		f.cache.On("Get", "dark").Return(createMockTheme("dark"), true)

		_, err := f.service.Compile(ctx, "/slides/a.md", []byte(""))
		require.Error(t, err)

		var compileError *entities.CompileError
		require.ErrorAs(t, err, &compileError)
		assert.Equal(t, entities.MalformedStructure, compileError.Kind)
		assert.ErrorIs(t, err, entities.ErrEmptyPresentation)
	})

	t.Run("invalid front matter", func(t *testing.T) {
		f := newPresentationFixture()
		doc := builders.NewDocumentBuilder().WithFrontMatter("title: [unterminated").Paragraph("a").Build()
		f.parser.On("Parse", ctx, []byte("x")).Return(doc, nil)

		_, err := f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		assert.ErrorIs(t, err, entities.ErrInvalidMetadata)
		f.cache.AssertNotCalled(t, "Get", mock.Anything)
	})

	t.Run("document theme is used", func(t *testing.T) {
		f := newPresentationFixture()
		doc := builders.NewDocumentBuilder().WithFrontMatter("theme: light").Paragraph("a").Build()
		f.parser.On("Parse", ctx, []byte("x")).Return(doc, nil)
		f.cache.On("Get", "light").Return(createMockTheme("light"), true)

		presentation, err := f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "light", presentation.Theme.Name)
		assert.Equal(t, 1, presentation.SlideCount())
	})

	t.Run("unknown document theme is unresolved", func(t *testing.T) {
		f := newPresentationFixture()
		doc := builders.NewDocumentBuilder().WithFrontMatter("theme: missing").Paragraph("a").Build()
		f.parser.On("Parse", ctx, []byte("x")).Return(doc, nil)
		f.cache.On("Get", "missing").Return(nil, false)
		f.loader.On("Load", ctx, "missing").Return(nil, errors.New("theme not found"))

		_, err := f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		assert.ErrorIs(t, err, entities.ErrUnresolvedReference)
	})

	t.Run("recompiling reloads the named theme", func(t *testing.T) {
		f := newPresentationFixture()
		doc := builders.NewDocumentBuilder().WithFrontMatter("theme: light").Paragraph("a").Build()
		f.parser.On("Parse", ctx, []byte("x")).Return(doc, nil)
		f.cache.On("Get", "light").Return(createMockTheme("light"), true)
		f.cache.On("Remove", "light").Return().Once()

		_, err := f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		require.NoError(t, err)
		f.cache.AssertNotCalled(t, "Remove", "light")

		_, err = f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		require.NoError(t, err)
		f.cache.AssertCalled(t, "Remove", "light")
	})

	t.Run("navigation does not recompile", func(t *testing.T) {
		f := newPresentationFixture()
		doc := builders.NewDocumentBuilder().
			Paragraph("one").
			Separator().
			Code("go", "fmt.Println(1)").
			Separator().
			Image("logo", "logo.png").
			Build()
		f.parser.On("Parse", ctx, []byte("x")).Return(doc, nil).Once()
		f.cache.On("Get", "dark").Return(createMockTheme("dark"), true)

		images := &MockImageStore{}
		images.On("Resolve", "logo.png").Return(entities.NewImageHandle("/slides/logo.png"), nil)
		f.service.compiler = NewCompiler(images, CompilerOptions{}, nil)

		presentation, err := f.service.Compile(ctx, "/slides/a.md", []byte("x"))
		require.NoError(t, err)
		require.Equal(t, 3, presentation.SlideCount())

		var visited []int
		for _, index := range []int{0, 1, 2, 1, 0} {
			slide, err := presentation.GetSlideByIndex(index)
			require.NoError(t, err)
			visited = append(visited, slide.Index)
		}
		assert.Equal(t, []int{0, 1, 2, 1, 0}, visited)
		f.parser.AssertNumberOfCalls(t, "Parse", 1)
	})
}
