package database

import (
	"fmt"
	"strings"

	config "github.com/refferq/referral_api/configs"
	"github.com/refferq/referral_api/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const sqlitePrefix = "sqlite:"

// Open picks the dialector from the DSN: "sqlite:<path>" for SQLite,
// anything else is handed to the Postgres driver.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.Open(dsn)
	}

	return gorm.Open(dialector, &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
}

// OpenMemory returns a migrated, private in-memory SQLite database.
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := Open(fmt.Sprintf("%sfile:%s?mode=memory&cache=shared&_foreign_keys=0", sqlitePrefix, name))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ConnectDB() {
	var err error
	DB, err = Open(config.Config("DATABASE_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("🔥 Failed to connect to database")
	}

	log.Info().Msg("✅ Database connected successfully")
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PartnerGroup{},
		&models.Affiliate{},
		&models.Referral{},
		&models.Transaction{},
		&models.Payout{},
		&models.Conversion{},
		&models.IntegrationSettings{},
	)
}

func Migrate() {
	if err := AutoMigrate(DB); err != nil {
		log.Fatal().Err(err).Msg("🔥 Failed to migrate database")
	}
	log.Info().Msg("✅ Database migration successful")
}

// SeedAdmin creates the initial ACTIVE admin account if it is missing.
func SeedAdmin(db *gorm.DB, email, password, fullName string) error {
	if email == "" || password == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error; err != nil {
		return fmt.Errorf("check for admin user: %w", err)
	}
	if count > 0 {
		log.Info().Msg("Admin user already exists.")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		FullName: fullName,
		Email:    strings.ToLower(email),
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Info().Msg("✅ Admin user seeded successfully")
	return nil
}
