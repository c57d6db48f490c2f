package common

import (
	"errors"
	"fmt"
	"time"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"
	"tixgate/src/utils"

	"gorm.io/gorm"
)

// CreateNewSession creates a session and its inventory row in one unit of
// work. Capacity is fixed at creation; only the IsActive flag may change
// afterwards.
func CreateNewSession(params *types.CreateSessionRequestBody) (uint, error) {
	day, err := time.Parse(config.DAY_PARSE_FORMAT, params.Day)
	if err != nil {
		return 0, fmt.Errorf("error parsing day: %w", err)
	}
	startsAt, err := parseClockOn(day, params.StartsAt)
	if err != nil {
		return 0, fmt.Errorf("error parsing starts_at: %w", err)
	}
	endsAt, err := parseClockOn(day, params.EndsAt)
	if err != nil {
		return 0, fmt.Errorf("error parsing ends_at: %w", err)
	}
	if !endsAt.After(startsAt) {
		return 0, errors.New("ends_at must be after starts_at")
	}
	total := params.AdultCapacity + params.StudentCapacity + params.ChildCapacity
	if total == 0 {
		return 0, errors.New("session must have at least one seat")
	}

	session := models.Session{
		Day:      day,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Slug:     utils.SessionSlug(day, startsAt),
		IsActive: params.Activate,
	}
	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		limits := models.SessionLimits{
			SessionID:        session.ID,
			AdultCapacity:    params.AdultCapacity,
			AdultAvailable:   params.AdultCapacity,
			StudentCapacity:  params.StudentCapacity,
			StudentAvailable: params.StudentCapacity,
			ChildCapacity:    params.ChildCapacity,
			ChildAvailable:   params.ChildCapacity,
			TotalCapacity:    total,
			TotalAvailable:   total,
		}
		if err := tx.Create(&limits).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return session.ID, nil
}

// SetSessionActive toggles the activation flag.
func SetSessionActive(sessionID uint, active bool) error {
	res := db.GetDb().
		Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func parseClockOn(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
