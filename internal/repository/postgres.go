package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

var _ models.Repository = (*PostgresDB)(nil)

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)
	return NewPostgresDBFromDSN(dsn, logger)
}

func NewPostgresDBFromDSN(dsn string, logger *logger.Logger) (*PostgresDB, error) {
	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.KYCRecord{}, &models.Property{}, &models.Investment{}, &models.Token{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// classify maps serialization failures, deadlocks, lock timeouts and unique
// violations to StateConflict. Application errors pass through unchanged.
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *models.Error
	if errors.As(err, &appErr) || models.IsNotFound(err) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "23505":
			return models.NewStateConflictError(msg, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func notFound(err error, sentinel error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return classify(err, msg)
}

// Users

func (db *PostgresDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.Conn.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "failed to get user")
	}
	return &user, nil
}

func (db *PostgresDB) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	var user models.User
	if err := db.Conn.WithContext(ctx).Where("wallet_address = ?", wallet).First(&user).Error; err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "failed to get user by wallet")
	}
	return &user, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, user *models.User) error {
	return classify(db.Conn.WithContext(ctx).Create(user).Error, "failed to create user")
}

func (db *PostgresDB) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return db.updateUserColumn(ctx, userID, "last_login", at)
}

func (db *PostgresDB) SetUserActive(ctx context.Context, userID int64, active bool) error {
	return db.updateUserColumn(ctx, userID, "is_active", active)
}

func (db *PostgresDB) SetUserAdmin(ctx context.Context, userID int64, admin bool) error {
	return db.updateUserColumn(ctx, userID, "is_admin", admin)
}

func (db *PostgresDB) SetUserEmail(ctx context.Context, userID int64, email string) error {
	return db.updateUserColumn(ctx, userID, "email", email)
}

func (db *PostgresDB) updateUserColumn(ctx context.Context, userID int64, column string, value interface{}) error {
	res := db.Conn.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return classify(res.Error, "failed to update user "+column)
	}
	if res.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// KYC records

func (db *PostgresDB) CreateKYCRecord(ctx context.Context, record *models.KYCRecord) error {
	return classify(db.Conn.WithContext(ctx).Create(record).Error, "failed to create kyc record")
}

func (db *PostgresDB) GetKYCRecord(ctx context.Context, id int64) (*models.KYCRecord, error) {
	var record models.KYCRecord
	if err := db.Conn.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, notFound(err, models.ErrKYCRecordNotFound, "failed to get kyc record")
	}
	return &record, nil
}

func (db *PostgresDB) ListKYCRecordsByUser(ctx context.Context, userID int64) ([]*models.KYCRecord, error) {
	var records []*models.KYCRecord
	if err := db.Conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, classify(err, "failed to list kyc records")
	}
	return records, nil
}

func (db *PostgresDB) LatestKYCRecord(ctx context.Context, userID int64) (*models.KYCRecord, error) {
	var record models.KYCRecord
	if err := db.Conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&record).Error; err != nil {
		return nil, notFound(err, models.ErrKYCRecordNotFound, "failed to get latest kyc record")
	}
	return &record, nil
}

func (db *PostgresDB) ListKYCRecordsByStatus(ctx context.Context, status string) ([]*models.KYCRecord, error) {
	var records []*models.KYCRecord
	q := db.Conn.WithContext(ctx).Order("submitted_at ASC, id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, classify(err, "failed to list kyc records by status")
	}
	return records, nil
}

func (db *PostgresDB) ReviewKYC(ctx context.Context, recordID int64, fn func(*models.KYCRecord, *models.User) error) error {
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.KYCRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", recordID).First(&record).Error; err != nil {
			return notFound(err, models.ErrKYCRecordNotFound, "failed to lock kyc record")
		}
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", record.UserID).First(&user).Error; err != nil {
			return notFound(err, models.ErrUserNotFound, "failed to lock kyc owner")
		}

		if err := fn(&record, &user); err != nil {
			return err
		}

		if err := tx.Save(&record).Error; err != nil {
			return classify(err, "failed to save kyc record")
		}
		return classify(tx.Save(&user).Error, "failed to sync user kyc state")
	})
	return classify(err, "kyc review failed")
}

// Properties

func (db *PostgresDB) CreateProperty(ctx context.Context, property *models.Property) error {
	return classify(db.Conn.WithContext(ctx).Create(property).Error, "failed to create property")
}

func (db *PostgresDB) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	var property models.Property
	if err := db.Conn.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, notFound(err, models.ErrPropertyNotFound, "failed to get property")
	}
	return &property, nil
}

func (db *PostgresDB) ListProperties(ctx context.Context, filter models.PropertyFilter) (*models.PropertyPage, error) {
	page, size := normalizePage(filter.Page, filter.Size)

	q := db.Conn.WithContext(ctx).Model(&models.Property{}).Where("is_active = ?", true)
	if filter.Jurisdiction != "" {
		q = q.Where("jurisdiction = ?", filter.Jurisdiction)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR location ILIKE ? OR description ILIKE ?", like, like, like)
	}
	if filter.Featured != nil {
		q = q.Where("is_featured = ?", *filter.Featured)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, classify(err, "failed to count properties")
	}

	var items []*models.Property
	offset := (page - 1) * size
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(size).Find(&items).Error; err != nil {
		return nil, classify(err, "failed to list properties")
	}

	return &models.PropertyPage{
		Items:   items,
		Total:   total,
		Page:    page,
		Size:    size,
		HasNext: int64(offset+size) < total,
	}, nil
}

func (db *PostgresDB) UpdateProperty(ctx context.Context, id int64, fn func(*models.Property) error) (*models.Property, error) {
	var updated models.Property
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&updated).Error; err != nil {
			return notFound(err, models.ErrPropertyNotFound, "failed to lock property")
		}
		if err := fn(&updated); err != nil {
			return err
		}
		updated.UpdatedAt = time.Now()
		return classify(tx.Model(&updated).Omit("total_tokens", "tokens_sold", "total_raised", "investor_count", "created_at").
			Select("*").Updates(&updated).Error, "failed to update property")
	})
	if err != nil {
		return nil, classify(err, "property update failed")
	}
	// Re-read so the caller sees the stored supply counters.
	return db.GetProperty(ctx, id)
}

// Ledger

func (db *PostgresDB) ReserveTokens(ctx context.Context, propertyID int64, fn func(*models.Property, models.LedgerTx) error) error {
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", propertyID).First(&property).Error; err != nil {
			return notFound(err, models.ErrPropertyNotFound, "failed to lock property")
		}

		if err := fn(&property, &pgLedgerTx{tx: tx}); err != nil {
			return err
		}

		return classify(tx.Model(&models.Property{}).Where("id = ?", property.ID).Updates(map[string]interface{}{
			"tokens_sold":    property.TokensSold,
			"status":         property.Status,
			"total_raised":   property.TotalRaised,
			"investor_count": property.InvestorCount,
			"updated_at":     time.Now(),
		}).Error, "failed to update property counters")
	})
	return classify(err, "token reservation failed")
}

type pgLedgerTx struct {
	tx *gorm.DB
}

func (l *pgLedgerTx) GetUser(userID int64) (*models.User, error) {
	var user models.User
	if err := l.tx.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "failed to get user")
	}
	return &user, nil
}

func (l *pgLedgerTx) HasInvested(userID, propertyID int64) (bool, error) {
	var count int64
	if err := l.tx.Model(&models.Investment{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error; err != nil {
		return false, classify(err, "failed to check previous investment")
	}
	return count > 0, nil
}

func (l *pgLedgerTx) CreateInvestment(investment *models.Investment) error {
	return classify(l.tx.Create(investment).Error, "failed to create investment")
}

func (l *pgLedgerTx) LastTokenNumber(propertyID int64) (int64, error) {
	var last *int64
	if err := l.tx.Model(&models.Token{}).
		Where("property_id = ?", propertyID).
		Select("MAX(token_number)").
		Scan(&last).Error; err != nil {
		return 0, classify(err, "failed to get last token number")
	}
	if last == nil {
		return 0, nil
	}
	return *last, nil
}

func (l *pgLedgerTx) CreateToken(token *models.Token) error {
	return classify(l.tx.Create(token).Error, "failed to create token")
}

// Investments and tokens

func (db *PostgresDB) ListUserTransactions(ctx context.Context, userID int64) ([]*models.UserTransaction, error) {
	var rows []*models.UserTransaction
	if err := db.Conn.WithContext(ctx).
		Table("investments").
		Select("investments.*, properties.name AS property_name").
		Joins("JOIN properties ON properties.id = investments.property_id").
		Where("investments.user_id = ?", userID).
		Order("investments.created_at DESC, investments.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, classify(err, "failed to list user transactions")
	}
	return rows, nil
}

func (db *PostgresDB) GetInvestmentByReference(ctx context.Context, userID int64, reference string) (*models.Investment, error) {
	var investment models.Investment
	if err := db.Conn.WithContext(ctx).
		Where("transaction_hash = ? AND user_id = ?", reference, userID).
		First(&investment).Error; err != nil {
		return nil, notFound(err, models.ErrInvestmentNotFound, "failed to get investment")
	}
	return &investment, nil
}

func (db *PostgresDB) ListPropertyTokens(ctx context.Context, propertyID int64) ([]*models.Token, error) {
	var tokens []*models.Token
	if err := db.Conn.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("token_number ASC").
		Find(&tokens).Error; err != nil {
		return nil, classify(err, "failed to list property tokens")
	}
	return tokens, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
