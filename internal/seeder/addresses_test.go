package seeder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busline-seeder/internal/csvstore"
)

func TestSeedAddresses_ResolvesAndAppends(t *testing.T) {
	cfg := testConfig(t)
	s := buildSeeder(t, cfg)
	writeFixture(t, filepath.Join(cfg.DataDir, FileBenxeAddresses), addressesFixture)

	sum, err := s.SeedAddresses()
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Read)
	assert.Equal(t, 2, sum.Matched)
	assert.Equal(t, 1, sum.Skipped, "Atlantis has no province")
	assert.Equal(t, 4, sum.Appended, "2 addresses + 2 stations")

	stations := readOut(t, cfg, FileStation, csvstore.Semicolon)
	require.Len(t, stations.Rows, 2)
	assert.Equal(t, "1500", stations.Rows[0]["id"])
	assert.Equal(t, "Bến xe Miền Đông", stations.Rows[0]["name"])
	assert.Equal(t, "Station in Hồ Chí Minh", stations.Rows[0]["description"])
	assert.Equal(t, "1500", stations.Rows[0]["address_id"])
	assert.Equal(t, "false", stations.Rows[0]["is_deleted"])
	assert.Equal(t, `\N`, stations.Rows[0]["deleted_by"])

	addrs := readOut(t, cfg, FileAddress, csvstore.Semicolon)
	require.Len(t, addrs.Rows, 2)
	assert.Equal(t, "26911", addrs.Rows[0]["ward_id"], "Phường 25 matches verbatim")
	assert.NotEmpty(t, addrs.Rows[0]["created_at"])

	// Intermediate giữ cả dòng không resolve được.
	inter, err := csvstore.ReadTable(filepath.Join(cfg.DataDir, FileBenxeAddressesWard), csvstore.Comma)
	require.NoError(t, err)
	require.Len(t, inter.Rows, 3)
	assert.Equal(t, "Phường 25", inter.Rows[0]["matched_ward"])
	assert.Equal(t, "Quận Bình Thạnh", inter.Rows[0]["matched_district"])
	assert.Equal(t, "", inter.Rows[2]["ward_id"])
}

func TestSeedAddresses_SecondRunAppendsNothing(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.DataDir, FileBenxeAddresses), addressesFixture)

	sum1, err := buildSeeder(t, cfg).SeedAddresses()
	require.NoError(t, err)
	require.Equal(t, 4, sum1.Appended)

	// Lần hai mô phỏng chạy lại binary: index + registry dựng lại từ file.
	sum2, err := buildSeeder(t, cfg).SeedAddresses()
	require.NoError(t, err)
	assert.Equal(t, 0, sum2.Appended)
	assert.Equal(t, 2, sum2.Matched)

	stations := readOut(t, cfg, FileStation, csvstore.Semicolon)
	assert.Len(t, stations.Rows, 2)
	addrs := readOut(t, cfg, FileAddress, csvstore.Semicolon)
	assert.Len(t, addrs.Rows, 2)
	assert.Equal(t, "1500", stations.Rows[0]["id"], "ids must survive the rerun")
}
