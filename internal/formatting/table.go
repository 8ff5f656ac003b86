// Package formatting renders credential cache state for terminal output.
package formatting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gauth/internal/tokenstore"
)

// CredentialTable renders stored credential records as a table, sorted by
// cache key for stable output. Token values are never rendered.
func CredentialTable(out io.Writer, records map[string]*tokenstore.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, text.FgYellow.Sprint("No cached credentials"))
		return
	}

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("IDENTITY"),
		text.FgHiCyan.Sprint("API"),
		text.FgHiCyan.Sprint("PROFILE"),
		text.FgHiCyan.Sprint("STATE"),
		text.FgHiCyan.Sprint("EXPIRY"),
		text.FgHiCyan.Sprint("SCOPES"),
	})

	for _, key := range keys {
		rec := records[key]
		t.AppendRow(table.Row{
			rec.Identity,
			rec.API,
			rec.Profile,
			stateCell(rec),
			expiryCell(rec),
			len(rec.GrantedScopes),
		})
	}

	t.Render()
}

func stateCell(rec *tokenstore.Record) string {
	switch {
	case !rec.Expired():
		return text.FgGreen.Sprint("valid")
	case rec.Refreshable():
		return text.FgYellow.Sprint("expired (refreshable)")
	default:
		return text.FgRed.Sprint("expired")
	}
}

func expiryCell(rec *tokenstore.Record) string {
	if rec.Expiry.IsZero() {
		return "-"
	}
	return rec.Expiry.Local().Format(time.RFC3339)
}
