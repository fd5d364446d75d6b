package csvstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTable_SemicolonDialect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "province.csv")
	content := "id;province_code;name\n" +
		"1500;79;Hồ Chí Minh\n" +
		"1501;01;Hà Nội\n" +
		"bogus;;Missing Columns\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := ReadTable(path, Semicolon)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "province_code", "name"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Hồ Chí Minh", table.Rows[0]["name"])
	assert.Equal(t, int64(1501), table.MaxNumericID("id"))
}

func TestReadTable_ShortRowsPadded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2\n"), 0o644))

	table, err := ReadTable(path, Comma)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["c"])
}

func TestReadTableIfExists_Missing(t *testing.T) {
	table, err := ReadTableIfExists(filepath.Join(t.TempDir(), "nope.csv"), Comma, []string{"id", "name"})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Equal(t, []string{"id", "name"}, table.Headers)
	assert.Equal(t, int64(0), table.MaxNumericID("id"))
}

func TestAppendRows_CreatesThenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staff.csv")
	headers := []string{"id", "name"}

	require.NoError(t, AppendRows(path, Comma, headers, []Row{{"id": "1500", "name": "Do Van G"}}))
	require.NoError(t, AppendRows(path, Comma, headers, []Row{{"id": "1501", "name": "Bui Thi H"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3, "header must be written exactly once")
	assert.Equal(t, "id,name", lines[0])

	table, err := ReadTable(path, Comma)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestIndex_SkipsEmptyKeys(t *testing.T) {
	table := &Table{
		Headers: []string{"id", "key"},
		Rows: []Row{
			{"id": "1", "key": "a"},
			{"id": "2", "key": ""},
			{"id": "3", "key": "b"},
		},
	}
	idx := table.Index(func(r Row) string { return r["key"] })
	assert.Len(t, idx, 2)
	assert.Equal(t, "3", idx["b"]["id"])
}

func TestWriteTable_QuotesDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "address.csv")
	headers := []string{"id", "street_address"}
	rows := []Row{{"id": "1500", "street_address": "292 Đinh Bộ Lĩnh; P.26"}}

	require.NoError(t, WriteTable(path, Semicolon, headers, rows))

	table, err := ReadTable(path, Semicolon)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "292 Đinh Bộ Lĩnh; P.26", table.Rows[0]["street_address"])
}
