package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

const maxColWidth = 40

func newTable() *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true
	return table
}

func writeTable(w io.Writer, table *uitable.Table) error {
	_, err := fmt.Fprintln(w, table)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderTowers(w io.Writer, p *Palette, towers []model.Tower) error {
	if len(towers) == 0 {
		_, err := fmt.Fprintln(w, p.Muted("No towers."))
		return err
	}

	table := newTable()
	table.AddRow(p.Header("ID"), p.Header("STATUS"), p.Header("LAT"), p.Header("LON"),
		p.Header("KELURAHAN"), p.Header("KECAMATAN"), p.Header("TYPE"), p.Header("HEIGHT"), p.Header("PROVIDERS"))
	for _, t := range towers {
		table.AddRow(t.ID, p.Status(t.Status), formatCoord(t.Latitude), formatCoord(t.Longitude),
			orDash(plain(t.Kelurahan)), orDash(plain(t.Kecamatan)), orDash(plain(t.Tipe)),
			formatCoord(t.Tinggi), orDash(plain(strings.Join(t.ProviderNames(), ", "))))
	}
	return writeTable(w, table)
}

// renderTowerDetail renders the detail sidebar for one tower.
func renderTowerDetail(w io.Writer, p *Palette, t model.Tower) error {
	table := newTable()
	table.AddRow(p.Header("Tower"), t.ID)
	table.AddRow(p.Header("Status"), p.Status(t.Status))
	table.AddRow(p.Header("Location"), formatCoord(t.Latitude)+", "+formatCoord(t.Longitude))
	table.AddRow(p.Header("Address"), orDash(plain(t.Address)))
	table.AddRow(p.Header("Kelurahan"), orDash(plain(t.Kelurahan)))
	table.AddRow(p.Header("Kecamatan"), orDash(plain(t.Kecamatan)))
	table.AddRow(p.Header("Type"), orDash(plain(t.Tipe)))
	table.AddRow(p.Header("Height"), formatCoord(t.Tinggi)+" m")
	table.AddRow(p.Header("Providers"), orDash(plain(strings.Join(t.ProviderNames(), ", "))))
	table.AddRow(p.Header("Photo"), orDash(t.PhotoURL))
	if !t.UpdatedAt.IsZero() {
		table.AddRow(p.Header("Updated"), humanize.Time(t.UpdatedAt))
	}
	return writeTable(w, table)
}

func renderProviders(w io.Writer, p *Palette, providers []model.Provider) error {
	if len(providers) == 0 {
		_, err := fmt.Fprintln(w, p.Muted("No providers."))
		return err
	}

	table := newTable()
	table.AddRow(p.Header("ID"), p.Header("NAME"), p.Header("ADDRESS"), p.Header("TOWERS"))
	for _, pr := range providers {
		table.AddRow(pr.ID, plain(pr.Name), orDash(plain(pr.Address)), len(pr.Towers))
	}
	return writeTable(w, table)
}

func renderBlankspots(w io.Writer, p *Palette, areas []model.BlankspotArea) error {
	if len(areas) == 0 {
		_, err := fmt.Fprintln(w, p.Muted("No blankspot areas."))
		return err
	}

	table := newTable()
	table.AddRow(p.Header("ID"), p.Header("NAME"), p.Header("KELURAHAN"), p.Header("TYPE"), p.Header("COLOR"), p.Header("VERTICES"))
	for _, a := range areas {
		vertices := "invalid"
		if polygon, err := a.Polygon(); err == nil {
			vertices = strconv.Itoa(len(polygon))
		}
		table.AddRow(a.ID, plain(a.Name), orDash(plain(a.Kelurahan)), orDash(plain(a.Type)), orDash(a.Color), vertices)
	}
	return writeTable(w, table)
}

func renderHistory(w io.Writer, p *Palette, events []model.TowerEvent, now time.Time) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, p.Muted("No recorded events."))
		return err
	}

	table := newTable()
	table.AddRow(p.Header("WHEN"), p.Header("EVENT"), p.Header("DESCRIPTION"))
	for _, e := range events {
		table.AddRow(humanize.RelTime(e.Timestamp, now, "ago", "from now"), e.EventType, orDash(plain(e.Description)))
	}
	return writeTable(w, table)
}
