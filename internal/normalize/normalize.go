package normalize

import (
	"regexp"
	"strings"
)

var spacesRegex = regexp.MustCompile(`\s+`)

type Options struct {
	TrimNBSP       bool
	CollapseSpaces bool
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Text чистит текстовый фрагмент DOM: NBSP → пробел, схлопывание пробелов, trim.
func (n *Normalizer) Text(text string) string {
	if n.opts.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.opts.CollapseSpaces {
		text = spacesRegex.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// Fragments применяет Text к каждому фрагменту и отбрасывает пустые.
func (n *Normalizer) Fragments(fragments []string) []string {
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = n.Text(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// NormalizeURL нормализует URL (убирает якори и пробелы по краям)
func NormalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	// Удаляем якори
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}
