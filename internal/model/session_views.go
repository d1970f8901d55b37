package model

import "time"

// SessionNowView is a rebuildable cache row: contractor C is registered for
// the session's event and the session is in progress right now. Rows are
// fully recomputed by the view refresher, never patched in place, so no
// external reference may assume row stability across a refresh.
type SessionNowView struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"`
	EventID             int64  `gorm:"index;not null"`
	ContractorID        int64  `gorm:"uniqueIndex:idx_now_contractor_session;not null"`
	SessionID           int64  `gorm:"uniqueIndex:idx_now_contractor_session;not null"`
	Title               string `gorm:"size:256;not null"`
	SpeakerName         string `gorm:"size:256"`
	Location            string `gorm:"size:256"`
	SessionTime         time.Time
	SessionEnd          time.Time
	RelevanceScore      int `gorm:"not null"`
	FocusAreaMatchCount int `gorm:"not null"`
	ComputedAt          time.Time `gorm:"not null"`
}

// SessionNextView is the "starting soon" companion cache: sessions whose
// start time falls within the configured look-ahead window, ranked by a
// priority score combining time urgency with focus-area match count.
type SessionNextView struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	EventID           int64  `gorm:"index;not null"`
	ContractorID      int64  `gorm:"uniqueIndex:idx_next_contractor_session;not null"`
	SessionID         int64  `gorm:"uniqueIndex:idx_next_contractor_session;not null"`
	Title             string `gorm:"size:256;not null"`
	SpeakerName       string `gorm:"size:256"`
	Location          string `gorm:"size:256"`
	SessionTime       time.Time
	MinutesUntilStart int `gorm:"not null"`
	MatchCount        int `gorm:"not null"`
	PriorityScore     int `gorm:"not null"`
	ComputedAt        time.Time `gorm:"not null"`
}
