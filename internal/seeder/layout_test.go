package seeder

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/csvstore"
)

func TestSeedLayout_GeneratesFloorsAndSeats(t *testing.T) {
	cfg := testConfig(t)
	_, err := buildSeeder(t, cfg).SeedStaff()
	require.NoError(t, err)

	sum, err := buildSeeder(t, cfg).SeedLayout()
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Matched, "one seat map per vehicle")

	seatMaps := readOut(t, cfg, FileSeatMap, csvstore.Comma)
	assert.Len(t, seatMaps.Rows, 7)

	floors := readOut(t, cfg, FileFloor, csvstore.Comma)
	// 5 xe giường nằm 2 tầng + 2 limousine 1 tầng.
	require.Len(t, floors.Rows, 12)

	floorsBySeatMap := make(map[string]int)
	for _, f := range floors.Rows {
		floorsBySeatMap[f["seat_map_id"]]++
	}
	vehicles := readOut(t, cfg, FileVehicle, csvstore.Comma)
	for _, v := range vehicles.Rows {
		want := 2
		if v["type"] == models.VehicleLimousine {
			want = 1
		}
		assert.Equal(t, want, floorsBySeatMap[v["seat_map_id"]], "vehicle %s", v["plate_number"])
	}

	seats := readOut(t, cfg, FileSeat, csvstore.Comma)
	seatsByFloor := make(map[string]int)
	for _, seat := range seats.Rows {
		seatsByFloor[seat["floor_id"]]++
		col, err := strconv.Atoi(seat["col_no"])
		require.NoError(t, err)
		assert.LessOrEqual(t, col, cfg.Fit.SeatColumns)
	}
	for floorID, n := range seatsByFloor {
		assert.GreaterOrEqual(t, n, cfg.Fit.MinSeatsPerFloor, "floor %s", floorID)
		assert.LessOrEqual(t, n, cfg.Fit.MaxSeatsPerFloor, "floor %s", floorID)
	}

	// Số ghế A01-style.
	assert.Regexp(t, `^[A-Z]\d{2}$`, seats.Rows[0]["seat_no"])
}

func TestSeedLayout_Deterministic(t *testing.T) {
	cfg := testConfig(t)
	_, err := buildSeeder(t, cfg).SeedStaff()
	require.NoError(t, err)

	_, err = buildSeeder(t, cfg).SeedLayout()
	require.NoError(t, err)
	before := readOut(t, cfg, FileSeat, csvstore.Comma)

	sum, err := buildSeeder(t, cfg).SeedLayout()
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Appended, "layout regeneration must reuse every id")

	after := readOut(t, cfg, FileSeat, csvstore.Comma)
	require.Len(t, after.Rows, len(before.Rows))
	for i := range before.Rows {
		assert.Equal(t, before.Rows[i]["id"], after.Rows[i]["id"])
	}
}

func TestSeatCount_StableAndBounded(t *testing.T) {
	cfg := testConfig(t)
	s := buildSeeder(t, cfg)

	for mapID := 1500; mapID < 1520; mapID++ {
		for floorNo := 1; floorNo <= 2; floorNo++ {
			a := s.seatCount(strconv.Itoa(mapID), floorNo)
			b := s.seatCount(strconv.Itoa(mapID), floorNo)
			assert.Equal(t, a, b)
			assert.GreaterOrEqual(t, a, cfg.Fit.MinSeatsPerFloor)
			assert.LessOrEqual(t, a, cfg.Fit.MaxSeatsPerFloor)
		}
	}
}
