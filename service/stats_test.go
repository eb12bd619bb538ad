package service

import (
	"clutch-review/constant"
	"clutch-review/entities"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func completed(shots int, createdAt time.Time) *entities.Video {
	return &entities.Video{Status: constant.VideoStatusCompleted, Shots: shots, CreatedAt: createdAt}
}

func TestShotStats_Empty(t *testing.T) {
	for _, videos := range [][]*entities.Video{nil, {}} {
		last100 := CalculateLast100ShotsPercentage(videos)
		allTime := CalculateShootingPercentage(videos)

		assert.Equal(t, entities.ShotStats{}, last100)
		assert.Equal(t, entities.ShotStats{}, allTime)
	}
}

func TestCalculateShootingPercentage(t *testing.T) {
	videos := []*entities.Video{
		completed(8, baseTime),
		completed(10, baseTime.Add(time.Hour)),
	}

	stats := CalculateShootingPercentage(videos)

	assert.Equal(t, 90, stats.Percentage)
	assert.Equal(t, 18.0, stats.MadeShots)
	assert.Equal(t, 20, stats.TotalShots)
}

func TestCalculateShootingPercentage_IgnoresUnfinishedAndBadShots(t *testing.T) {
	videos := []*entities.Video{
		completed(7, baseTime),
		completed(15, baseTime.Add(time.Minute)),
		{Status: constant.VideoStatusRecording, Shots: 10, CreatedAt: baseTime},
		{Status: constant.VideoStatusError, Shots: 10, CreatedAt: baseTime},
		nil,
	}

	stats := CalculateShootingPercentage(videos)

	assert.Equal(t, 35, stats.Percentage)
	assert.Equal(t, 7.0, stats.MadeShots)
	assert.Equal(t, 20, stats.TotalShots)
}

func TestCalculateLast100ShotsPercentage_UsesNewestSessions(t *testing.T) {
	var videos []*entities.Video
	// two old perfect sessions followed by ten newer sessions of 5
	videos = append(videos, completed(10, baseTime), completed(10, baseTime.Add(time.Minute)))
	for i := 0; i < 10; i++ {
		videos = append(videos, completed(5, baseTime.Add(time.Hour*time.Duration(i+1))))
	}

	stats := CalculateLast100ShotsPercentage(videos)

	assert.Equal(t, 100, stats.TotalShots)
	assert.Equal(t, 50.0, stats.MadeShots)
	assert.Equal(t, 50, stats.Percentage)
}

func TestCalculateLast100ShotsPercentage_NeverExceedsWindow(t *testing.T) {
	tests := []struct {
		name     string
		sessions int
		want     int
	}{
		{"one session", 1, 10},
		{"nine sessions", 9, 90},
		{"ten sessions", 10, 100},
		{"fifty sessions", 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var videos []*entities.Video
			for i := 0; i < tt.sessions; i++ {
				videos = append(videos, completed(i%11, baseTime.Add(time.Duration(i)*time.Minute)))
			}
			stats := CalculateLast100ShotsPercentage(videos)
			assert.Equal(t, tt.want, stats.TotalShots)
			assert.LessOrEqual(t, stats.MadeShots, float64(stats.TotalShots))
		})
	}
}

func TestCalculateLast100ShotsPercentage_Rounds(t *testing.T) {
	videos := []*entities.Video{
		completed(2, baseTime),
		completed(3, baseTime.Add(time.Minute)),
		completed(3, baseTime.Add(2*time.Minute)),
	}

	stats := CalculateLast100ShotsPercentage(videos)

	// 8 of 30 is 26.67%
	assert.Equal(t, 27, stats.Percentage)
	assert.Equal(t, 8.0, stats.MadeShots)
}

func TestCalculateUserStats(t *testing.T) {
	videos := []*entities.Video{
		completed(6, baseTime),
		completed(4, baseTime.Add(time.Minute)),
		{Status: constant.VideoStatusError, CreatedAt: baseTime},
	}
	now := baseTime.Add(time.Hour)

	stats := CalculateUserStats(videos, now)

	assert.Equal(t, 2, stats.SessionCount)
	assert.Equal(t, 50, stats.AllTime.Percentage)
	assert.Equal(t, 50, stats.Last100Shots.Percentage)
	assert.Equal(t, now, stats.AllTime.LastUpdated)
	assert.Equal(t, now, stats.Last100Shots.LastUpdated)
}
