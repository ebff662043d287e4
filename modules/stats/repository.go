package stats

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNoSamples is returned when a room has no progress samples.
var ErrNoSamples = errors.New("no progress samples")

// Repository provides access to the activity history.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordRoomEvent appends a join or leave.
func (r *Repository) RecordRoomEvent(ctx context.Context, event *RoomEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record room event: %w", err)
	}
	return nil
}

// RecordProgress appends a wpm sample.
func (r *Repository) RecordProgress(ctx context.Context, sample *ProgressSample) error {
	if err := r.db.WithContext(ctx).Create(sample).Error; err != nil {
		return fmt.Errorf("failed to record progress sample: %w", err)
	}
	return nil
}

// CountRoomEvents counts the events of kind recorded for room.
func (r *Repository) CountRoomEvents(ctx context.Context, room, kind string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RoomEvent{}).
		Where("room = ? AND kind = ?", room, kind).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s events: %w", kind, err)
	}
	return count, nil
}

// CountSamples counts the progress samples recorded for room.
func (r *Repository) CountSamples(ctx context.Context, room string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ProgressSample{}).
		Where("room = ?", room).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count progress samples: %w", err)
	}
	return count, nil
}

// BestSample returns the highest wpm sample recorded for room.
func (r *Repository) BestSample(ctx context.Context, room string) (*ProgressSample, error) {
	var sample ProgressSample
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("wpm DESC").
		Order("id ASC").
		First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSamples
		}
		return nil, fmt.Errorf("failed to find best sample: %w", err)
	}
	return &sample, nil
}

// Leaderboard returns the best wpm per name in room, highest first.
func (r *Repository) Leaderboard(ctx context.Context, room string, limit int) ([]LeaderboardEntry, error) {
	entries := make([]LeaderboardEntry, 0)
	err := r.db.WithContext(ctx).
		Model(&ProgressSample{}).
		Select("name, MAX(wpm) AS best_wpm, COUNT(*) AS samples").
		Where("room = ?", room).
		Group("name").
		Order("best_wpm DESC").
		Order("name ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	return entries, nil
}
