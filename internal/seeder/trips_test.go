package seeder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busline-seeder/app/config"
	"github.com/busline-seeder/internal/csvstore"
)

func setupTripInputs(t *testing.T, cfg *config.Config) {
	t.Helper()
	setupRouteInputs(t, buildSeeder(t, cfg))
	_, err := buildSeeder(t, cfg).SeedRoutes()
	require.NoError(t, err)
	_, err = buildSeeder(t, cfg).SeedStaff()
	require.NoError(t, err)
}

func TestSeedTrips_GeneratesTrips(t *testing.T) {
	cfg := testConfig(t)
	setupTripInputs(t, cfg)

	sum, err := buildSeeder(t, cfg).SeedTrips()
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Read)
	assert.Equal(t, 3, sum.Matched)
	assert.Equal(t, 3, sum.Appended)

	trips := readOut(t, cfg, FileTrip, csvstore.Comma)
	require.Len(t, trips.Rows, 3)

	codes := make(map[string]bool)
	for _, tr := range trips.Rows {
		codes[tr["trip_code"]] = true
		assert.Regexp(t, `^TRIP\d{6}$`, tr["trip_code"])
		assert.NotEmpty(t, tr["route_id"])
		assert.NotEmpty(t, tr["vehicle_id"])
		assert.NotEmpty(t, tr["driver_id"])
		assert.NotEmpty(t, tr["attendant_id"])
	}
	assert.Len(t, codes, 3, "trip codes are unique")
}

func TestSeedTrips_RerunKeepsIDs(t *testing.T) {
	cfg := testConfig(t)
	setupTripInputs(t, cfg)

	_, err := buildSeeder(t, cfg).SeedTrips()
	require.NoError(t, err)
	before := readOut(t, cfg, FileTrip, csvstore.Comma)

	sum, err := buildSeeder(t, cfg).SeedTrips()
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Appended, "unchanged inputs mint no new trip ids")

	after := readOut(t, cfg, FileTrip, csvstore.Comma)
	require.Len(t, after.Rows, len(before.Rows))
	for i := range before.Rows {
		assert.Equal(t, before.Rows[i]["id"], after.Rows[i]["id"])
		assert.Equal(t, before.Rows[i]["trip_code"], after.Rows[i]["trip_code"])
		assert.Equal(t, before.Rows[i]["departure_time"], after.Rows[i]["departure_time"])
	}
}

func TestSeedTrips_RequiresRoutesAndStaff(t *testing.T) {
	cfg := testConfig(t)
	s := buildSeeder(t, cfg)
	writeFixture(t, filepath.Join(cfg.DataDir, FileBenxeTickets), benxeTicketsFixture)
	writeFixture(t, filepath.Join(cfg.DataDir, FileNhaxeTickets), nhaxeTicketsFixture)

	_, err := s.SeedTrips()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routes")
}

func TestTripTimes_OvernightRollsToNextDay(t *testing.T) {
	dep, arr, err := tripTimes(ticketRec{depart: "21:00", arrive: "05:30", date: "15-03-2025"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15 21:00:00", dep)
	assert.Equal(t, "2025-03-16 05:30:00", arr)

	_, _, err = tripTimes(ticketRec{depart: "junk", arrive: "05:30", date: "15-03-2025"})
	assert.Error(t, err)
}

func TestBaseFare(t *testing.T) {
	assert.Equal(t, "250000", baseFare("250.000đ"))
	assert.Equal(t, "300000", baseFare("300000"))
	assert.Equal(t, "0", baseFare("miễn phí"))
}
