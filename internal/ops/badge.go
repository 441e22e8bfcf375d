package ops

import (
	"errors" // Error comparison

	"mutual_aid/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Badge types form a closed catalog; awarding anything outside it fails
// with ErrInvalidBadgeType
const (
	BadgeLocalLobang    = "LOCAL_LOBANG"    // Shared a useful local tip or deal
	BadgeGoodSamaritan  = "GOOD_SAMARITAN"  // Completed an errand for a neighbour
	BadgePeaceMaker     = "PEACE_MAKER"     // Resolved a complaint as moderator
	BadgeTopContributor = "TOP_CONTRIBUTOR" // Topped the monthly leaderboard
)

// Leaderboard periods
const (
	PeriodMonthly = "MONTHLY" // Ranked by this month's counters
	PeriodTotal   = "TOTAL"   // Ranked by lifetime counters
)

// badgeInfo is the static metadata attached to each catalog entry
type badgeInfo struct {
	Name        string // Display name
	Description string // Display description
}

// badgeCatalog maps every valid badge type to its metadata. The catalog is
// fixed at compile time; badge rows are only ever created from it.
var badgeCatalog = map[string]badgeInfo{
	BadgeLocalLobang: {
		Name:        "Local Lobang",
		Description: "Shared a good deal or insider tip with the community",
	},
	BadgeGoodSamaritan: {
		Name:        "Good Samaritan",
		Description: "Fulfilled a neighbour's errand request",
	},
	BadgePeaceMaker: {
		Name:        "Peace Maker",
		Description: "Resolved a community complaint",
	},
	BadgeTopContributor: {
		Name:        "Top Contributor",
		Description: "Topped the monthly helper leaderboard",
	},
}

// ValidBadgeType reports whether a badge type exists in the catalog
func ValidBadgeType(badgeType string) bool {
	_, ok := badgeCatalog[badgeType]
	return ok
}

// getOrCreateBadgeTx finds the (user, badge type) counter row, creating it
// with zero counters when absent. Runs inside the caller's transaction.
func getOrCreateBadgeTx(tx *gorm.DB, userID uint, badgeType string) (*domain.Badge, error) {
	info, ok := badgeCatalog[badgeType]
	if !ok {
		return nil, ErrInvalidBadgeType
	}
	var badge domain.Badge
	err := tx.Where("user_id = ? AND badge_type = ?", userID, badgeType).First(&badge).Error
	if err == nil {
		return &badge, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// First award of this type for the user; seed from the catalog
	badge = domain.Badge{
		UserID:      userID,
		BadgeType:   badgeType,
		Name:        info.Name,
		Description: info.Description,
	}
	if err := tx.Create(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetOrCreateBadge exposes find-or-create outside a transaction
func GetOrCreateBadge(db *gorm.DB, userID uint, badgeType string) (*domain.Badge, error) {
	var badge *domain.Badge
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		badge, err = getOrCreateBadgeTx(tx, userID, badgeType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return badge, nil
}

// awardBadgeTx bumps both counters of a (user, badge type) row inside the
// caller's transaction
func awardBadgeTx(tx *gorm.DB, userID uint, badgeType string) (*domain.Badge, error) {
	badge, err := getOrCreateBadgeTx(tx, userID, badgeType)
	if err != nil {
		return nil, err
	}
	err = tx.Model(badge).Updates(map[string]any{
		"monthly_counter": gorm.Expr("monthly_counter + ?", 1),
		"total_counter":   gorm.Expr("total_counter + ?", 1),
	}).Error
	if err != nil {
		return nil, err
	}
	badge.MonthlyCounter++
	badge.TotalCounter++
	return badge, nil
}

// AwardBadge increments the monthly and lifetime counters for a badge,
// creating the counter row on first award
func AwardBadge(db *gorm.DB, userID uint, badgeType string) (*domain.Badge, error) {
	var badge *domain.Badge
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		badge, err = awardBadgeTx(tx, userID, badgeType)
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"badge_type": badgeType,
		"monthly":    badge.MonthlyCounter,
		"total":      badge.TotalCounter,
	}).Info("Badge awarded")
	return badge, nil
}

// ListBadgesByUserID returns all badge counters a user has earned
func ListBadgesByUserID(db *gorm.DB, userID uint) ([]domain.Badge, error) {
	var badges []domain.Badge
	if err := db.Where("user_id = ?", userID).Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

// LeaderboardEntry is one ranked row of the helper leaderboard
type LeaderboardEntry struct {
	UserID   uint   `json:"user_id"`  // Ranked user
	Username string `json:"username"` // Display name
	Score    int    `json:"score"`    // Badge counter sum for the period
}

// GetLeaderboard ranks users by the sum of their badge counters for the
// period, highest first. Ties break on the lower user id, which under
// auto-increment keys is the earlier account. Users without badge rows are
// excluded rather than listed with a zero score.
func GetLeaderboard(db *gorm.DB, period string) ([]LeaderboardEntry, error) {
	var column string
	switch period {
	case PeriodMonthly:
		column = "monthly_counter"
	case PeriodTotal:
		column = "total_counter"
	default:
		return nil, ErrInvalidPeriod
	}
	var entries []LeaderboardEntry
	err := db.Model(&domain.Badge{}).
		Select("badges.user_id AS user_id, users.username AS username, SUM(badges."+column+") AS score").
		Joins("JOIN users ON users.id = badges.user_id").
		Group("badges.user_id, users.username").
		Having("SUM(badges."+column+") > 0").
		Order("score DESC, badges.user_id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ResetMonthlyCounts closes out the month: the monthly leaderboard is read
// first, its leader receives TOP_CONTRIBUTOR, and only then is every
// monthly counter zeroed. Runs as one transaction so a failure leaves no
// partial reset behind.
func ResetMonthlyCounts(db *gorm.DB) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		// Leaderboard must be read before the counters are cleared
		entries, err := GetLeaderboard(tx, PeriodMonthly)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			winner := entries[0]
			if _, err := awardBadgeTx(tx, winner.UserID, BadgeTopContributor); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"user_id": winner.UserID,
				"score":   winner.Score,
			}).Info("Monthly leaderboard winner awarded")
		}
		// Zero the monthly counters table-wide
		return tx.Model(&domain.Badge{}).
			Where("monthly_counter <> 0").
			UpdateColumn("monthly_counter", 0).Error
	})
	if err != nil {
		return err
	}
	logrus.Info("Monthly badge counters reset")
	return nil
}
