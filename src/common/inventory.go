package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

// Availability is the read-only view of a session's inventory.
type Availability struct {
	SessionID uint                     `json:"session_id"`
	IsActive  bool                     `json:"is_active"`
	IsSoldOut bool                     `json:"is_sold_out"`
	Capacity  types.CategoryQuantities `json:"capacity"`
	Available types.CategoryQuantities `json:"available"`
	Booked    types.CategoryQuantities `json:"booked"`
	Total     struct {
		Capacity  uint `json:"capacity"`
		Available uint `json:"available"`
		Booked    uint `json:"booked"`
	} `json:"total"`
}

// Reserve takes seats for each requested category in one conditional UPDATE.
// The WHERE guards make an oversell impossible: two purchases racing for the
// last seat serialize on the row and only one statement matches.
func Reserve(tx *gorm.DB, sessionID uint, q types.CategoryQuantities) error {
	if q.Total() == 0 {
		return ErrInvalidState
	}
	res := tx.
		Model(&models.SessionLimits{}).
		Where("session_id = ?", sessionID).
		Where("adult_available >= ?", q.Adult).
		Where("student_available >= ?", q.Student).
		Where("child_available >= ?", q.Child).
		Where("total_available >= ?", q.Total()).
		Updates(map[string]any{
			"adult_available":   gorm.Expr("adult_available - ?", q.Adult),
			"adult_booked":      gorm.Expr("adult_booked + ?", q.Adult),
			"student_available": gorm.Expr("student_available - ?", q.Student),
			"student_booked":    gorm.Expr("student_booked + ?", q.Student),
			"child_available":   gorm.Expr("child_available - ?", q.Child),
			"child_booked":      gorm.Expr("child_booked + ?", q.Child),
			"total_available":   gorm.Expr("total_available - ?", q.Total()),
			"total_booked":      gorm.Expr("total_booked + ?", q.Total()),
			"is_sold_out":       gorm.Expr("(adult_available - ?) <= 0 AND (student_available - ?) <= 0 AND (child_available - ?) <= 0", q.Adult, q.Student, q.Child),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var limits models.SessionLimits
		err := tx.
			Where(&models.SessionLimits{SessionID: sessionID}).
			First(&limits).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return &InventoryExhaustedError{
			SessionID: sessionID,
			SeatsLeft: types.CategoryQuantities{
				Adult:   limits.AdultAvailable,
				Student: limits.StudentAvailable,
				Child:   limits.ChildAvailable,
			},
		}
	}
	invalidateSnapshot(sessionID)
	return nil
}

// Release returns seats to the pool after a terminal payment failure or a
// reaped checkout. Counters are clamped so repeated releases can never push
// availability past capacity.
func Release(tx *gorm.DB, sessionID uint, q types.CategoryQuantities) error {
	if q.Total() == 0 {
		return nil
	}
	res := tx.
		Model(&models.SessionLimits{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"adult_available":   gorm.Expr("LEAST(adult_available + ?, adult_capacity)", q.Adult),
			"adult_booked":      gorm.Expr("GREATEST(adult_booked - ?, 0)", q.Adult),
			"student_available": gorm.Expr("LEAST(student_available + ?, student_capacity)", q.Student),
			"student_booked":    gorm.Expr("GREATEST(student_booked - ?, 0)", q.Student),
			"child_available":   gorm.Expr("LEAST(child_available + ?, child_capacity)", q.Child),
			"child_booked":      gorm.Expr("GREATEST(child_booked - ?, 0)", q.Child),
			"total_available":   gorm.Expr("LEAST(total_available + ?, total_capacity)", q.Total()),
			"total_booked":      gorm.Expr("GREATEST(total_booked - ?, 0)", q.Total()),
			"is_sold_out":       false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	invalidateSnapshot(sessionID)
	return nil
}

// Snapshot reads availability for a session, served from the redis cache
// when one is configured.
func Snapshot(sessionID uint) (*Availability, error) {
	rd := lib.GetRedisClient()
	key := snapshotKey(sessionID)
	if rd != nil {
		cached, err := rd.Get(context.Background(), key).Result()
		if err == nil && cached != "" {
			var av Availability
			if err := json.Unmarshal([]byte(cached), &av); err == nil {
				return &av, nil
			}
		}
	}

	var session models.Session
	err := db.GetDb().
		Where(&models.Session{ID: sessionID}).
		Preload("Limits").
		First(&session).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.Limits == nil {
		return nil, ErrNotFound
	}
	l := session.Limits
	av := &Availability{
		SessionID: sessionID,
		IsActive:  session.IsActive,
		IsSoldOut: l.IsSoldOut,
		Capacity:  types.CategoryQuantities{Adult: l.AdultCapacity, Student: l.StudentCapacity, Child: l.ChildCapacity},
		Available: types.CategoryQuantities{Adult: l.AdultAvailable, Student: l.StudentAvailable, Child: l.ChildAvailable},
		Booked:    types.CategoryQuantities{Adult: l.AdultBooked, Student: l.StudentBooked, Child: l.ChildBooked},
	}
	av.Total.Capacity = l.TotalCapacity
	av.Total.Available = l.TotalAvailable
	av.Total.Booked = l.TotalBooked

	if rd != nil {
		if b, err := json.Marshal(av); err == nil {
			rd.SetEx(context.Background(), key, string(b), config.SnapshotTTL())
		}
	}
	return av, nil
}

func snapshotKey(sessionID uint) string {
	return fmt.Sprintf("availability:%d", sessionID)
}

func invalidateSnapshot(sessionID uint) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), snapshotKey(sessionID)).Err(); err != nil {
		log.Printf("[inventory] Error invalidating snapshot for session %d: %s\n", sessionID, err.Error())
	}
}
