package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatTable},
		{input: "table", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: " yml ", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_Table(t *testing.T) {
	tbl := NewTable("Name", "Source")
	tbl.AddRow("open", "sales")
	tbl.AddRow("close", "app")

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(tbl))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "sales")
	assert.Contains(t, out, "close")
}

func TestPrinter_TableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"count": 2}))
	assert.JSONEq(t, `{"count": 2}`, buf.String())
}

func TestPrinter_YAML(t *testing.T) {
	type item struct {
		Name string `yaml:"name"`
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print([]item{{Name: "open"}}))
	assert.Equal(t, "- name: open\n", buf.String())
}

func TestPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)
	p.Success("created")
	p.Warning("careful")
	assert.Equal(t, "created\ncareful\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, FormatTable, true).Success("created")
	assert.Equal(t, "\033[32mcreated\033[0m\n", buf.String())
}

func TestPrintKeyValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintKeyValues(&buf, [][2]string{{"Topology", "web"}, {"Plugins", "3"}}))

	out := buf.String()
	assert.Contains(t, out, "Topology")
	assert.Contains(t, out, "web")
	assert.Contains(t, out, "Plugins")
}
