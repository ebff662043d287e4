package stats

import (
	"context"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&RoomEvent{}, &ProgressSample{}), "failed to migrate test database")
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedSamples(t *testing.T, repo *Repository, room string, samples map[string][]float64) {
	t.Helper()
	ctx := context.Background()
	for name, values := range samples {
		for _, wpm := range values {
			require.NoError(t, repo.RecordProgress(ctx, &ProgressSample{
				ConnID:     "conn-" + name,
				Name:       name,
				Room:       room,
				WPM:        wpm,
				RecordedAt: time.Now(),
			}))
		}
	}
}

func TestRepository_CountRoomEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for _, e := range []RoomEvent{
		{ConnID: "a", Name: "Alice", Room: "r1", Kind: KindJoined},
		{ConnID: "b", Name: "Bob", Room: "r1", Kind: KindJoined},
		{ConnID: "a", Name: "Alice", Room: "r1", Kind: KindLeft, Reason: "switch"},
		{ConnID: "a", Name: "Alice", Room: "r2", Kind: KindJoined, PreviousRoom: "r1"},
	} {
		require.NoError(t, repo.RecordRoomEvent(ctx, &e))
		assert.NotZero(t, e.ID)
	}

	joins, err := repo.CountRoomEvents(ctx, "r1", KindJoined)
	require.NoError(t, err)
	assert.Equal(t, int64(2), joins)

	leaves, err := repo.CountRoomEvents(ctx, "r1", KindLeft)
	require.NoError(t, err)
	assert.Equal(t, int64(1), leaves)

	none, err := repo.CountRoomEvents(ctx, "nowhere", KindJoined)
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestRepository_BestSample(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.BestSample(ctx, "r1")
	assert.ErrorIs(t, err, ErrNoSamples)

	seedSamples(t, repo, "r1", map[string][]float64{"Alice": {40, 72.5}, "Bob": {65}})
	seedSamples(t, repo, "r2", map[string][]float64{"Carol": {120}})

	best, err := repo.BestSample(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", best.Name)
	assert.Equal(t, 72.5, best.WPM)

	count, err := repo.CountSamples(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepository_Leaderboard(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	seedSamples(t, repo, "r1", map[string][]float64{
		"Alice": {40, 72.5},
		"Bob":   {65},
		"Carol": {90, 30, 10},
		"Dave":  {65},
	})

	tests := []struct {
		name  string
		limit int
		want  []LeaderboardEntry
	}{
		{
			name:  "all names",
			limit: 10,
			want: []LeaderboardEntry{
				{Name: "Carol", BestWPM: 90, Samples: 3},
				{Name: "Alice", BestWPM: 72.5, Samples: 2},
				{Name: "Bob", BestWPM: 65, Samples: 1},
				{Name: "Dave", BestWPM: 65, Samples: 1},
			},
		},
		{
			name:  "limited",
			limit: 2,
			want: []LeaderboardEntry{
				{Name: "Carol", BestWPM: 90, Samples: 3},
				{Name: "Alice", BestWPM: 72.5, Samples: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Leaderboard(ctx, "r1", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty room", func(t *testing.T) {
		got, err := repo.Leaderboard(ctx, "r9", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
