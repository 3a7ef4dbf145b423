package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidctl/coolerctl/driver"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	earlier := now.Add(-2 * time.Hour)

	readings := []driver.Reading{
		{Channel: "pump", Label: "Pump speed", Value: 2357, Unit: driver.UnitRPM},
		{Channel: "water", Label: "Water temperature", Value: 28.43, Unit: driver.UnitCelsius},
		{Channel: "firmware", Label: "Firmware version", Text: "2.10.219"},
	}
	require.NoError(t, s.Append(ctx, "Corsair Commander Core", earlier, readings))
	require.NoError(t, s.Append(ctx, "Corsair Commander Core", now, readings))

	all, err := s.Query(ctx, time.Time{}, "")
	require.NoError(t, err)
	// Text readings are not stored; two polls of two numeric readings each.
	require.Len(t, all, 4)
	assert.Equal(t, now, all[0].TakenAt, "newest first")

	recent, err := s.Query(ctx, now.Add(-time.Hour), "")
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	pump, err := s.Query(ctx, time.Time{}, "pump")
	require.NoError(t, err)
	require.Len(t, pump, 2)
	assert.Equal(t, 2357.0, pump[0].Value)
	assert.Equal(t, driver.UnitRPM, pump[0].Unit)
}

func TestQueryEmptyStore(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Query(context.Background(), time.Time{}, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
