package meeting

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	idTimeLayout = "200601021504"
	idIdentifier = "x"
)

var (
	nonAlnumRegex   = regexp.MustCompile(`[^A-Za-z0-9^]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// GenerateID строит детерминированный ID: "<name>/<YYYYMMDDHHmm>/x/<slug>".
func GenerateID(scraperName string, start time.Time, title string) string {
	return strings.Join([]string{
		scraperName,
		start.Format(idTimeLayout),
		idIdentifier,
		Slugify(title),
	}, "/")
}

// Slugify: не-буквенно-цифровые символы → пробел, пробелы → "_", нижний регистр.
// "^" сохраняется, как и в исходном формате ID.
func Slugify(title string) string {
	s := nonAlnumRegex.ReplaceAllString(title, " ")
	s = whitespaceRegex.ReplaceAllString(s, "_")
	return strings.Trim(strings.ToLower(s), "_")
}

// SlugSourceFromURL возвращает последний сегмент пути ссылки,
// например "nboe-retreat-05-20-2023" для ".../events/nboe-retreat-05-20-2023/".
func SlugSourceFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return u.Host
	}
	return path.Base(p)
}
