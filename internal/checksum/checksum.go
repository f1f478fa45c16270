package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"nboe-meetings/internal/meeting"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateMeetingHash генерирует SHA256 хеш содержимого заседания.
// Формула: SHA256(source|title|start|end|address|name|links)
// Статус не входит: он пересчитывается при каждом запуске.
func (g *Generator) GenerateMeetingHash(m *meeting.Meeting) string {
	name := ""
	if m.Location.Name != nil {
		name = *m.Location.Name
	}

	links := make([]string, 0, len(m.Links))
	for _, l := range m.Links {
		links = append(links, l.Title+"="+l.Href)
	}

	content := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		m.Source,
		m.Title,
		m.Start.Format(time.RFC3339),
		m.End.Format(time.RFC3339),
		m.Location.Address,
		name,
		strings.Join(links, ";"),
	)

	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// VerifyMeetingHash проверяет соответствие хеша
func (g *Generator) VerifyMeetingHash(expectedHash string, m *meeting.Meeting) bool {
	return g.GenerateMeetingHash(m) == expectedHash
}
