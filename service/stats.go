package service

import (
	"clutch-review/constant"
	"clutch-review/entities"
	"math"
	"sort"
	"time"
)

const last100Window = 100

func validShots(shots int) int {
	if shots < 0 || shots > constant.ShotsPerSession {
		return 0
	}
	return shots
}

func completedVideos(videos []*entities.Video) []*entities.Video {
	completed := make([]*entities.Video, 0, len(videos))
	for _, v := range videos {
		if v != nil && v.Status == constant.VideoStatusCompleted {
			completed = append(completed, v)
		}
	}
	return completed
}

func percentage(made float64, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(made / float64(total) * 100))
}

// CalculateLast100ShotsPercentage walks completed videos newest first until 100 shots are
// counted. A session that only partly fits contributes shots scaled by the slots left.
func CalculateLast100ShotsPercentage(videos []*entities.Video) entities.ShotStats {
	completed := completedVideos(videos)
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})

	var made float64
	total := 0
	for _, v := range completed {
		if total >= last100Window {
			break
		}
		slots := min(constant.ShotsPerSession, last100Window-total)
		made += float64(validShots(v.Shots)) * float64(slots) / constant.ShotsPerSession
		total += slots
	}

	return entities.ShotStats{
		Percentage: percentage(made, total),
		MadeShots:  made,
		TotalShots: total,
	}
}

// CalculateShootingPercentage is the all-time percentage over completed videos.
func CalculateShootingPercentage(videos []*entities.Video) entities.ShotStats {
	completed := completedVideos(videos)
	made := 0
	for _, v := range completed {
		made += validShots(v.Shots)
	}
	total := len(completed) * constant.ShotsPerSession

	return entities.ShotStats{
		Percentage: percentage(float64(made), total),
		MadeShots:  float64(made),
		TotalShots: total,
	}
}

func CalculateUserStats(videos []*entities.Video, now time.Time) entities.UserStats {
	last100 := CalculateLast100ShotsPercentage(videos)
	last100.LastUpdated = now
	allTime := CalculateShootingPercentage(videos)
	allTime.LastUpdated = now

	return entities.UserStats{
		Last100Shots: last100,
		AllTime:      allTime,
		SessionCount: len(completedVideos(videos)),
	}
}
