package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by results that print as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes r as a borderless, left-aligned table.
func PrintTable(w io.Writer, r TableRenderer) error {
	table := newTable(w)
	table.SetHeader(r.Headers())
	table.SetAutoFormatHeaders(true)
	table.SetColumnSeparator("")
	table.AppendBulk(r.Rows())
	table.Render()
	return nil
}

// PrintKeyValues writes "key: value" pairs, one per line.
func PrintKeyValues(w io.Writer, pairs [][2]string) error {
	table := newTable(w)
	table.SetColumnSeparator(":")
	for _, p := range pairs {
		table.Append([]string{p[0], p[1]})
	}
	table.Render()
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// Table is an ad-hoc TableRenderer.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates an empty table with headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) { t.rows = append(t.rows, cells) }

func (t *Table) Headers() []string { return t.headers }

func (t *Table) Rows() [][]string { return t.rows }
