package model

import "time"

// AchievementType is a one-time bonus-granting milestone tracked per
// (event, user).
type AchievementType string

const (
	AchievementFirstCommit   AchievementType = "first_commit"
	AchievementSpeedDemon    AchievementType = "speed_demon"
	AchievementQualityMaster AchievementType = "quality_master"
	AchievementNightOwl      AchievementType = "night_owl"
	AchievementEarlyBird     AchievementType = "early_bird"
)

// AchievementBonus is the one-time score bonus granted per achievement.
const AchievementBonus = 50

// Score is the per-(event,user) running aggregate of commit contributions,
// rank, and achievements. The (event,user) pair is unique.
type Score struct {
	ID      string `json:"id" bson:"_id"`
	EventID string `json:"event_id" bson:"event_id"`
	UserID  string `json:"user_id" bson:"user_id"`
	RepoID  string `json:"repo_id" bson:"repo_id"`

	TotalCommits int `json:"total_commits" bson:"total_commits"`
	ValidCommits int `json:"valid_commits" bson:"valid_commits"`
	TotalScore   int `json:"total_score" bson:"total_score"`

	Breakdown    ScoreBreakdown `json:"breakdown" bson:"breakdown"`
	Stats        ScoreStats     `json:"stats" bson:"stats"`
	Achievements []Achievement  `json:"achievements" bson:"achievements"`

	// Rank and Percentile are recomputed from the full ranked set on every
	// aggregate update, never derived incrementally.
	Rank       int     `json:"rank" bson:"rank"`
	Percentile float64 `json:"percentile" bson:"percentile"`

	// Once locked, no further mutation is permitted. The finish transition
	// is the only writer after lock.
	IsLocked bool `json:"is_locked" bson:"is_locked"`

	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// ScoreBreakdown splits the aggregate total into its contribution buckets.
type ScoreBreakdown struct {
	BaseScore    int `json:"base_score" bson:"base_score"`
	QualityScore int `json:"quality_score" bson:"quality_score"`
	TimingScore  int `json:"timing_score" bson:"timing_score"`
	BonusScore   int `json:"bonus_score" bson:"bonus_score"`
}

// ScoreStats holds aggregated stats across a participant's valid commits.
type ScoreStats struct {
	AverageQuality    float64 `json:"average_quality" bson:"average_quality"`
	TotalAdditions    int     `json:"total_additions" bson:"total_additions"`
	TotalDeletions    int     `json:"total_deletions" bson:"total_deletions"`
	TotalFilesChanged int     `json:"total_files_changed" bson:"total_files_changed"`
}

// Achievement records a granted milestone.
type Achievement struct {
	Type     AchievementType `json:"type" bson:"type"`
	EarnedAt time.Time       `json:"earned_at" bson:"earned_at"`
}

// HasAchievement reports whether an achievement type was already granted.
func (s *Score) HasAchievement(t AchievementType) bool {
	for _, a := range s.Achievements {
		if a.Type == t {
			return true
		}
	}
	return false
}
