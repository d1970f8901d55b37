package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"power100-experience-backend/config"
	"power100-experience-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := applyPostgresDDL(db); err != nil {
		log.Printf("Warning: failed to apply some postgres DDL: %v. Continuing without it.", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// AutoMigrate migrates every table the orchestration core owns, including the
// rebuildable view tables. Shared with the sqlite-backed integration tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Event{},
		&model.Contractor{},
		&model.Session{},
		&model.SponsorSlot{},
		&model.EventAttendee{},
		&model.OrchestrationMessage{},
		&model.ConciergeLog{},
		&model.PushSubscription{},
		&model.SessionNowView{},
		&model.SessionNextView{},
	)
}

// applyPostgresDDL layers on constraints AutoMigrate cannot express.
// Best-effort: a failure is logged by the caller, not fatal.
func applyPostgresDDL(db *gorm.DB) error {
	ddls := []string{
		// Speaker slots must not end before they begin. Only enforced when
		// both bounds are present; partially-timed imports stay loadable.
		"ALTER TABLE sessions ADD CONSTRAINT sessions_window_valid " +
			"CHECK (session_time IS NULL OR session_end IS NULL OR session_time < session_end);",

		// The delivery worker polls pending messages by send time.
		"CREATE INDEX IF NOT EXISTS idx_messages_pending_by_send_time " +
			"ON orchestration_messages (scheduled_send_time) WHERE status = 'pending';",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
