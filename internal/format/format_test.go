package format

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func testResults() *Results {
	result := driver.NewMemoryQueryResult(
		[]string{"id", "data"},
		[]driver.Row{
			{driver.NewI64(1), driver.NewBytes([]byte("bytes"))},
			{driver.NewI64(2), driver.NewString("foo")},
			{driver.NewI64(3), driver.NewNull()},
		},
	)
	return QueryResults(result)
}

func testOptions() *Options {
	options := DefaultOptions()
	options.Color = false
	options.Elapsed = 9 * time.Nanosecond
	return options
}

func render(t *testing.T, identifier string, options *Options, results *Results) string {
	t.Helper()
	formatter, err := Get(identifier)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, formatter.Format(context.Background(), options, results, &buf))
	return buf.String()
}

func TestGetUnknownFormat(t *testing.T) {
	_, err := Get("nope")
	assert.ErrorContains(t, err, "nope")
}

func TestFormats(t *testing.T) {
	formats := Formats()
	assert.Contains(t, formats, "ascii")
	assert.Contains(t, formats, "json")
	assert.Contains(t, formats, "unicode")
	assert.IsIncreasing(t, formats)
}

func TestSqliteFormat(t *testing.T) {
	output := render(t, "sqlite", testOptions(), testResults())
	expected := "id|data\n" +
		"1|Ynl0ZXM=\n" +
		"2|foo\n" +
		"3|\n" +
		"3 rows (9ns)\n"
	assert.Equal(t, expected, output)
}

func TestCsvFormat(t *testing.T) {
	output := render(t, "csv", testOptions(), testResults())
	expected := "\"id\",\"data\"\n" +
		"1,\"Ynl0ZXM=\"\n" +
		"2,\"foo\"\n" +
		"3,\"\"\n" +
		"3 rows (9ns)\n"
	assert.Equal(t, expected, output)
}

func TestTsvFormat(t *testing.T) {
	output := render(t, "tsv", testOptions(), testResults())
	assert.Contains(t, output, "\"id\"\t\"data\"\n")
	assert.Contains(t, output, "2\t\"foo\"\n")
}

func TestJsonFormat(t *testing.T) {
	output := render(t, "json", testOptions(), testResults())
	expected := `[
  {
    "id": 1,
    "data": "Ynl0ZXM="
  },
  {
    "id": 2,
    "data": "foo"
  },
  {
    "id": 3,
    "data": null
  }
]
3 rows (9ns)
`
	assert.Equal(t, expected, output)
}

func TestJsonlFormat(t *testing.T) {
	output := render(t, "jsonl", testOptions(), testResults())
	expected := `{"id":1,"data":"Ynl0ZXM="}
{"id":2,"data":"foo"}
{"id":3,"data":null}
3 rows (9ns)
`
	assert.Equal(t, expected, output)
}

func TestYamlFormat(t *testing.T) {
	output := render(t, "yaml", testOptions(), testResults())
	expected := `- id: 1
  data: Ynl0ZXM=
- id: 2
  data: foo
- id: 3
  data: null
3 rows (9ns)
`
	assert.Equal(t, expected, output)
}

func TestXmlFormat(t *testing.T) {
	output := render(t, "xml", testOptions(), testResults())
	expected := `<results>
  <row>
    <id>1</id>
    <data>Ynl0ZXM=</data>
  </row>
  <row>
    <id>2</id>
    <data>foo</data>
  </row>
  <row>
    <id>3</id>
    <data/>
  </row>
</results>
3 rows (9ns)
`
	assert.Equal(t, expected, output)
}

func TestHtmlFormat(t *testing.T) {
	output := render(t, "html", testOptions(), testResults())
	assert.Contains(t, output, "<table>\n  <thead>\n    <tr>\n      <th>id</th>\n      <th>data</th>\n")
	assert.Contains(t, output, "      <td>2</td>\n      <td>foo</td>\n")
	assert.Contains(t, output, "      <td/>\n")
	assert.Contains(t, output, "3 rows (9ns)\n")
}

func TestHtmlEscapes(t *testing.T) {
	results := QueryResults(driver.NewMemoryQueryResult(
		[]string{"v"},
		[]driver.Row{{driver.NewString("<b>&</b>")}},
	))
	output := render(t, "html", testOptions(), results)
	assert.Contains(t, output, "&lt;b&gt;&amp;&lt;/b&gt;")
}

func TestExpandedFormat(t *testing.T) {
	output := render(t, "expanded", testOptions(), testResults())
	expected := "-[ RECORD 1 ]-\n" +
		"id   | 1\n" +
		"data | Ynl0ZXM=\n" +
		"-[ RECORD 2 ]-\n" +
		"id   | 2\n" +
		"data | foo\n" +
		"-[ RECORD 3 ]-\n" +
		"id   | 3\n" +
		"data | NULL\n" +
		"3 rows (9ns)\n"
	assert.Equal(t, expected, output)
}

func TestAsciiFormat(t *testing.T) {
	output := render(t, "ascii", testOptions(), testResults())
	assert.Contains(t, output, "id")
	assert.Contains(t, output, "data")
	assert.Contains(t, output, "Ynl0ZXM=")
	assert.Contains(t, output, "NULL")
	assert.Contains(t, output, "3 rows (9ns)")
}

func TestUnicodeFormat(t *testing.T) {
	output := render(t, "unicode", testOptions(), testResults())
	assert.Contains(t, output, "─")
	assert.Contains(t, output, "foo")
}

func TestMarkdownFormat(t *testing.T) {
	output := render(t, "markdown", testOptions(), testResults())
	assert.Contains(t, output, "| id ")
	assert.Contains(t, output, "| foo ")
}

func TestHeaderOff(t *testing.T) {
	options := testOptions()
	options.Header = false
	output := render(t, "sqlite", options, testResults())
	assert.NotContains(t, output, "id|data")
	assert.Contains(t, output, "1|Ynl0ZXM=")
}

func TestFooterOff(t *testing.T) {
	options := testOptions()
	options.Footer = false
	output := render(t, "sqlite", options, testResults())
	assert.NotContains(t, output, "3 rows")
	assert.NotContains(t, output, "9ns")
}

func TestTimerOff(t *testing.T) {
	options := testOptions()
	options.Timer = false
	output := render(t, "sqlite", options, testResults())
	assert.Contains(t, output, "3 rows\n")
	assert.NotContains(t, output, "9ns")
}

func TestRowsOff(t *testing.T) {
	options := testOptions()
	options.Rows = false
	output := render(t, "sqlite", options, testResults())
	assert.NotContains(t, output, "3 rows")
	assert.Contains(t, output, "(9ns)")
}

func TestSingleRowFooter(t *testing.T) {
	results := QueryResults(driver.NewMemoryQueryResult(
		[]string{"id"},
		[]driver.Row{{driver.NewI64(1)}},
	))
	output := render(t, "sqlite", testOptions(), results)
	assert.Contains(t, output, "1 row (9ns)")
}

func TestExecuteResults(t *testing.T) {
	output := render(t, "sqlite", testOptions(), ExecuteResults(42))
	assert.Equal(t, "42 rows (9ns)\n", output)
}

func TestExecuteChangesOff(t *testing.T) {
	options := testOptions()
	options.Changes = false
	output := render(t, "sqlite", options, ExecuteResults(42))
	assert.Equal(t, "(9ns)\n", output)
}

func TestLocaleGrouping(t *testing.T) {
	results := QueryResults(driver.NewMemoryQueryResult(
		[]string{"n"},
		[]driver.Row{{driver.NewI64(1234567)}},
	))
	output := render(t, "expanded", testOptions(), results)
	assert.Contains(t, output, "1,234,567")
}
