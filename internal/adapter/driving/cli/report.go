package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

var (
	mdRenderer    = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlSanitizer = bluemonday.UGCPolicy()
)

// TowerReport renders a tower and its history as a GitHub-flavored
// markdown document.
func TowerReport(t model.Tower, events []model.TowerEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tower %d\n\n", t.ID)
	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) {
		fmt.Fprintf(&b, "| %s | %s |\n", k, mdCell(v))
	}
	row("Status", string(t.Status))
	row("Location", fmt.Sprintf("%s, %s", formatCoord(t.Latitude), formatCoord(t.Longitude)))
	row("Address", t.Address)
	row("Kelurahan", t.Kelurahan)
	row("Kecamatan", t.Kecamatan)
	row("Type", t.Tipe)
	row("Height (m)", formatCoord(t.Tinggi))
	row("Providers", strings.Join(t.ProviderNames(), ", "))

	b.WriteString("\n## History\n\n")
	if len(events) == 0 {
		b.WriteString("_No recorded events._\n")
		return b.String()
	}
	b.WriteString("| When | Event | Description |\n|---|---|---|\n")
	for _, e := range events {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			e.Timestamp.UTC().Format("2006-01-02 15:04"), e.EventType, mdCell(e.Description))
	}
	return b.String()
}

// RenderMarkdown converts markdown to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) (string, error) {
	if src == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// mdCell makes backend text safe inside a markdown table cell.
func mdCell(s string) string {
	s = plain(s)
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
