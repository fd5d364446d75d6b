package refindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/busline-seeder/internal/csvstore"
)

// gazetteerRow dựng một dòng 14 cột đúng layout (id cột 0, name cột 2,
// parent cột 13).
func gazetteerRow(id, name, parent string) string {
	cols := make([]string, 14)
	cols[0] = id
	cols[2] = name
	cols[13] = parent
	return strings.Join(cols, ";")
}

func writeGazetteer(t *testing.T, dir string) {
	t.Helper()

	province := strings.Join(ProvinceHeaders, ";") + "\n" +
		gazetteerRow("1", "Thành phố Hồ Chí Minh", "") + "\n" +
		gazetteerRow("2", "Thành phố Hà Nội", "") + "\n" +
		gazetteerRow("bogus", "Broken Province", "") + "\n"
	district := strings.Join(DistrictHeaders, ";") + "\n" +
		gazetteerRow("10", "Quận 1", "1") + "\n" +
		gazetteerRow("11", "Quận Bình Thạnh", "1") + "\n" +
		gazetteerRow("12", "Quận Ba Đình", "2") + "\n"
	ward := strings.Join(WardHeaders, ";") + "\n" +
		gazetteerRow("100", "Phường Bến Nghé", "10") + "\n" +
		gazetteerRow("101", "Phường Đa Kao", "10") + "\n" +
		gazetteerRow("102", "Phường 25", "11") + "\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "province.csv"), []byte(province), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "district.csv"), []byte(district), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ward.csv"), []byte(ward), 0o644))
}

func TestLoad_BuildsTierMaps(t *testing.T) {
	dir := t.TempDir()
	writeGazetteer(t, dir)

	ix, err := Load(dir, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, ix.Provinces, 2, "malformed row must be skipped")
	assert.Equal(t, 1, ix.SkippedRows)

	hcm, ok := ix.ProvinceByNorm["thanh pho ho chi minh"]
	require.True(t, ok)
	assert.Equal(t, int64(1), hcm.ID)

	q1, ok := ix.DistrictByNorm["quan 1"]
	require.True(t, ok)
	assert.Equal(t, hcm.ID, q1.ProvinceID)

	assert.Len(t, ix.DistrictsByProvince[hcm.ID], 2)
	assert.Len(t, ix.WardsByDistrict[q1.ID], 2)
	assert.Equal(t, "Phường Bến Nghé", ix.WardsByDistrict[q1.ID][0].Name)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := Load(t.TempDir(), zap.NewNop())
	require.Error(t, err)
}

func TestAddStations_SentinelAndDefault(t *testing.T) {
	dir := t.TempDir()
	writeGazetteer(t, dir)
	ix, err := Load(dir, zap.NewNop())
	require.NoError(t, err)

	stations := &csvstore.Table{
		Headers: []string{"id", "name", "description", "address_id"},
		Rows: []csvstore.Row{
			{"id": "1500", "name": "Bến xe Miền Đông", "description": "Station in Hồ Chí Minh", "address_id": "1500"},
			{"id": "1501", "name": "Bến xe Miền Tây", "description": "Station in Hồ Chí Minh", "address_id": "1501"},
			{"id": "1502", "name": "Bến xe Mỹ Đình", "description": "Station in Hà Nội", "address_id": ""},
			{"id": "1503", "name": "Bến xe Nước Ngầm", "description": "no sentinel here", "address_id": ""},
		},
	}
	addresses := &csvstore.Table{
		Headers: []string{"id", "street_address"},
		Rows: []csvstore.Row{
			{"id": "1500", "street_address": "292 Đinh Bộ Lĩnh, Bình Thạnh"},
			{"id": "1501", "street_address": "395 Kinh Dương Vương, Bình Tân"},
		},
	}

	ix.AddStations(stations, addresses, zap.NewNop())

	assert.Equal(t, int64(1500), ix.StationIDByNorm["ben xe mien dong"])
	assert.Equal(t, []int64{1500, 1501}, ix.StationsByProvince["ho chi minh"])
	assert.Equal(t, int64(1500), ix.DefaultStationByProvince["ho chi minh"], "first seen wins")
	assert.Equal(t, "292 Đinh Bộ Lĩnh, Bình Thạnh", ix.StationAddressText(1500))
	assert.Equal(t, "", ix.StationAddressText(1502), "station without address id")

	_, hasNoSentinel := ix.DefaultStationByProvince["no sentinel here"]
	assert.False(t, hasNoSentinel)
}
