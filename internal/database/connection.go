// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/playline/agency-backend/internal/config"
	"github.com/playline/agency-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Info),
			TranslateError: true,
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Agent{},
		&models.User{},
		&models.AgentClosure{},
		&models.UserClosure{},
		&models.CommissionRate{},
		&models.CommissionPolicy{},
		&models.CommissionLedger{},
		&models.Settlement{},
		&models.Payout{},
		&models.BalanceAdjustment{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Agent indexes
		"CREATE INDEX IF NOT EXISTS idx_agents_code ON agents(code)",
		"CREATE INDEX IF NOT EXISTS idx_agents_parent ON agents(parent_id)",
		"CREATE INDEX IF NOT EXISTS idx_agents_status ON agents(status)",

		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_agent ON users(agent_id)",
		"CREATE INDEX IF NOT EXISTS idx_users_referrer ON users(referrer_id)",

		// Closure is queried in both directions; the composite primary key
		// covers ancestor-first lookups, these cover descendant-first.
		"CREATE INDEX IF NOT EXISTS idx_agent_closures_descendant ON agent_closures(descendant_id, depth)",
		"CREATE INDEX IF NOT EXISTS idx_user_closures_descendant ON user_closures(descendant_id, depth)",

		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_recipient_status ON commission_ledgers(recipient_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_recipient_created ON commission_ledgers(recipient_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_settlement ON commission_ledgers(settlement_id)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_reference ON commission_ledgers(reference_type, reference_id)",

		// Settlement indexes
		"CREATE INDEX IF NOT EXISTS idx_settlements_agent_status ON settlements(agent_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_settlements_period ON settlements(agent_id, period_start, period_end)",

		// Payout indexes
		"CREATE INDEX IF NOT EXISTS idx_payouts_agent ON payouts(agent_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create the root operator agent and its self closure row
	var rootCount int64
	db.Model(&models.Agent{}).Where("parent_id IS NULL").Count(&rootCount)

	if rootCount == 0 {
		root := &models.Agent{
			Code:   "HQ",
			Name:   "Headquarters",
			Role:   models.AgentRoleOperator,
			Status: models.NodeStatusActive,
			Depth:  0,
		}

		if err := root.SetPassword("operator123!@#"); err != nil {
			return fmt.Errorf("failed to set root agent password: %w", err)
		}

		err := WithTransaction(db, func(tx *gorm.DB) error {
			if err := tx.Create(root).Error; err != nil {
				return err
			}
			return tx.Create(&models.AgentClosure{
				AncestorID:   root.ID,
				DescendantID: root.ID,
				Depth:        0,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to create root agent: %w", err)
		}

		log.Println("Root agent created successfully")
	}

	// Create default commission policies (category-agnostic fallbacks)
	defaultPolicies := []models.CommissionPolicy{
		{
			CommissionType: models.CommissionTypeRolling,
			Category:       "",
			Enabled:        true,
			Description:    "Default rolling commission policy",
		},
		{
			CommissionType: models.CommissionTypeLosing,
			Category:       "",
			Enabled:        true,
			Description:    "Default losing commission policy",
		},
	}

	for _, policy := range defaultPolicies {
		var count int64
		db.Model(&models.CommissionPolicy{}).
			Where("commission_type = ? AND category = ?", policy.CommissionType, policy.Category).
			Count(&count)

		if count == 0 {
			if err := db.Create(&policy).Error; err != nil {
				log.Printf("Warning: Failed to create policy %s: %v", policy.CommissionType, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
