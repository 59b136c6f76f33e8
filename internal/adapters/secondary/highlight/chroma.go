package highlight

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// ChromaHighlighter implements the Highlighter interface using chroma lexers
// and styles
type ChromaHighlighter struct {
	logger *slog.Logger
}

// NewChromaHighlighter creates a new chroma highlighter
func NewChromaHighlighter(logger *slog.Logger) *ChromaHighlighter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChromaHighlighter{logger: logger}
}

// Highlight tokenises code and returns one span list per source line
func (h *ChromaHighlighter) Highlight(code, language, style string) (entities.HighlightedCode, error) {
	lexer := lexers.Get(language)
	if lexer == nil && language == "" {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		h.logger.Debug("no lexer for language", slog.String("language", language))
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	// styles.Get falls back to the default style for unknown names
	chromaStyle := styles.Get(style)
	base := chromaStyle.Get(chroma.Background)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, fmt.Errorf("tokenising %s code: %w", language, err)
	}

	want := strings.Count(code, "\n") + 1
	out := make(entities.HighlightedCode, 0, want)
	for _, tokens := range chroma.SplitTokensIntoLines(iterator.Tokens()) {
		if len(out) == want {
			break
		}
		var line []entities.StyledSpan
		for _, token := range tokens {
			text := strings.TrimSuffix(token.Value, "\n")
			if text == "" {
				continue
			}
			line = append(line, entities.StyledSpan{
				Text:  text,
				Role:  entities.RoleCode,
				Style: tokenStyle(chromaStyle.Get(token.Type), base),
			})
		}
		out = append(out, line)
	}
	for len(out) < want {
		out = append(out, nil)
	}
	return out, nil
}

// tokenStyle converts a chroma style entry. Backgrounds equal to the style
// background are dropped so the theme's code background shows through.
func tokenStyle(entry, base chroma.StyleEntry) entities.Style {
	var style entities.Style
	if entry.Colour.IsSet() {
		style.Foreground = entities.Color(entry.Colour.String())
	}
	if entry.Background.IsSet() && entry.Background != base.Background {
		style.Background = entities.Color(entry.Background.String())
	}
	if entry.Bold == chroma.Yes {
		style.Attrs |= entities.AttrBold
	}
	if entry.Italic == chroma.Yes {
		style.Attrs |= entities.AttrItalic
	}
	if entry.Underline == chroma.Yes {
		style.Attrs |= entities.AttrUnderline
	}
	return style
}

// Styles returns the names of the available highlighting styles
func Styles() []string {
	return styles.Names()
}
