package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harrylevesque/idqr/internal/models"
)

var (
	unknownColor = color.New(color.FgYellow)
	warnColor    = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// TableFormatter outputs records in a human-readable layout. Empty fields are
// omitted and N/A is shown as an explicit unknown value.
type TableFormatter struct {
	opts Options
}

// WriteRecord writes one record as labelled lines.
func (f *TableFormatter) WriteRecord(w io.Writer, rec models.IdentityRecord) error {
	headerColor.Fprintln(w, "Scanned Data")
	fmt.Fprintln(w, "============")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	shown := 0
	for _, field := range rec.Fields() {
		if field.Value == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", field.Label, displayValue(field.Value))
		shown++
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if shown == 0 && rec.ParseError == "" {
		dimColor.Fprintln(w, "No identity fields recognised")
	}
	if rec.ParseError != "" {
		warnColor.Fprintf(w, "Warning: payload only partially understood: %s\n", rec.ParseError)
	}

	fmt.Fprintln(w)
	size := humanize.Bytes(uint64(len(rec.RawData)))
	if !f.opts.ShowRaw {
		dimColor.Fprintf(w, "Raw QR Data (%s, use --raw to show)\n", size)
		return nil
	}
	fmt.Fprintf(w, "Raw QR Data (%s)\n", size)
	fmt.Fprintln(w, "-----------")
	_, err := fmt.Fprintln(w, rec.RawData)
	return err
}

// WriteBatch writes one summary row per payload.
func (f *TableFormatter) WriteBatch(w io.Writer, items []BatchItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHAPE\tHOLDER\tSTATUS\tSIZE")

	var failed int64
	for _, item := range items {
		status := "ok"
		if !item.Record.Usable() {
			status = "parse error"
			failed++
		}
		holder := item.Record.Name
		if holder == "" {
			holder = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.Name,
			item.Record.Shape,
			holder,
			status,
			humanize.Bytes(uint64(len(item.Record.RawData))),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s payloads, %s with parse errors\n",
		humanize.Comma(int64(len(items))), humanize.Comma(failed))
	return err
}

func displayValue(v string) string {
	if v == models.NotAvailable {
		return unknownColor.Sprint("N/A (unknown)")
	}
	return v
}
