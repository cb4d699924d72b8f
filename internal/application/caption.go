package application

import (
	"fmt"
	"strings"
	"time"

	"rateboard-service/internal/domain"
)

// boardCategory drives caption template selection. Recognition follows the
// keyword matching used by the board layouts: a group is a tether board or a
// pound board by name/slug keywords, anything else gets the default template.
type boardCategory int

const (
	boardDefault boardCategory = iota
	boardPound
	boardTether
	boardSpecial
)

var (
	tetherKeywords = []string{"tether", "usdt", "تتر"}
	poundKeywords  = []string{"pound", "gbp", "پوند"}
)

func categorize(group domain.Group) boardCategory {
	if group.IsSpecial() {
		return boardSpecial
	}
	haystack := strings.ToLower(group.Name + " " + group.Slug)
	for _, kw := range tetherKeywords {
		if strings.Contains(haystack, kw) {
			return boardTether
		}
	}
	for _, kw := range poundKeywords {
		if strings.Contains(haystack, kw) {
			return boardPound
		}
	}
	return boardDefault
}

// CaptionConfig carries the shop lines appended below every board caption.
type CaptionConfig struct {
	ContactLines []string
	FooterNote   string
}

func buildCaption(group domain.Group, items []SnapshotItem, ts time.Time, cfg CaptionConfig) string {
	var b strings.Builder

	switch categorize(group) {
	case boardTether:
		b.WriteString("💵 خرید و فروش تتر\n")
	case boardPound:
		b.WriteString("💷 خرید فروش پوند نقدی و حسابی\n")
	case boardSpecial:
		if len(items) > 0 {
			fmt.Fprintf(&b, "Special price • %s\n", items[0].Instrument.Name)
		} else {
			fmt.Fprintf(&b, "Special price • %s\n", group.Name)
		}
	default:
		fmt.Fprintf(&b, "%s rates\n", group.Name)
	}

	fmt.Fprintf(&b, "Updated %s\n", ts.Format("2006-01-02 15:04"))

	if len(cfg.ContactLines) > 0 {
		b.WriteString("\n")
		for _, line := range cfg.ContactLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if cfg.FooterNote != "" {
		b.WriteString("\n")
		b.WriteString(cfg.FooterNote)
	}
	return strings.TrimRight(b.String(), "\n")
}
