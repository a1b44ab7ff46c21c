package emailstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormEmailRepository implements the EmailRepository interface using GORM as the storage medium
type GormEmailRepository struct {
	db *gorm.DB
}

// EmailEntity is the database model for Email objects
type EmailEntity struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	State           string `gorm:"size:16;index"`
	FromAddress     string `gorm:"size:320;index"`
	FromDisplayName string
	To              string `gorm:"type:text"` // JSON serialized addresses
	Cc              string `gorm:"type:text"` // JSON serialized addresses
	Subject         string
	Body            string `gorm:"type:text"`
	ModifiedDate    time.Time `gorm:"precision:6"`
	UpdatedAt       time.Time // GORM's default timestamp
}

// TableName specifies the table name for the EmailEntity
func (EmailEntity) TableName() string {
	return "emails"
}

// NewGormEmailRepository creates a new GORM-based email repository
func NewGormEmailRepository(db *gorm.DB) (*GormEmailRepository, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	// Auto migrate the schema
	err := db.AutoMigrate(&EmailEntity{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &GormEmailRepository{
		db: db,
	}, nil
}

// Save inserts the email when it has no ID and upserts it otherwise
func (r *GormEmailRepository) Save(ctx context.Context, email *Email) (*Email, error) {
	if email == nil {
		return nil, errors.New("email cannot be nil")
	}

	return saveEntity(r.db.WithContext(ctx), email)
}

// SaveAll stores every non-nil email in one transaction
func (r *GormEmailRepository) SaveAll(ctx context.Context, emails []*Email) ([]*Email, error) {
	if len(emails) == 0 {
		return []*Email{}, nil
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	saved := make([]*Email, 0, len(emails))
	for _, email := range emails {
		if email == nil {
			continue
		}

		stored, err := saveEntity(tx, email)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		saved = append(saved, stored)
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

func saveEntity(tx *gorm.DB, email *Email) (*Email, error) {
	entity, err := emailToEntity(email)
	if err != nil {
		return nil, fmt.Errorf("failed to convert email to entity: %w", err)
	}

	if result := tx.Save(entity); result.Error != nil {
		return nil, fmt.Errorf("failed to save email: %w", result.Error)
	}

	stored, err := entityToEmail(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to convert entity to email: %w", err)
	}

	return stored, nil
}

// FindByID retrieves an email by ID
func (r *GormEmailRepository) FindByID(ctx context.Context, id uint64) (*Email, error) {
	var entity EmailEntity
	result := r.db.WithContext(ctx).First(&entity, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to get email: %w", result.Error)
	}

	email, err := entityToEmail(&entity)
	if err != nil {
		return nil, fmt.Errorf("failed to convert entity to email: %w", err)
	}

	return email, nil
}

// FindAllByID retrieves the emails for the given IDs in request order, skipping unknown IDs
func (r *GormEmailRepository) FindAllByID(ctx context.Context, ids []uint64) ([]*Email, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []*Email{}, nil
	}

	var entities []EmailEntity
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get emails: %w", result.Error)
	}

	byID := make(map[uint64]*Email, len(entities))
	for i := range entities {
		email, err := entityToEmail(&entities[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert entity to email: %w", err)
		}
		byID[email.ID] = email
	}

	emails := make([]*Email, 0, len(byID))
	for _, id := range ids {
		if email, ok := byID[id]; ok {
			emails = append(emails, email)
		}
	}

	return emails, nil
}

// ExistsByID reports whether an email with the ID is stored
func (r *GormEmailRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&EmailEntity{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check email existence: %w", result.Error)
	}

	return count > 0, nil
}

// FindAllBySenderAddress retrieves every email sent from the address, ordered by ID
func (r *GormEmailRepository) FindAllBySenderAddress(ctx context.Context, address string) ([]*Email, error) {
	var entities []EmailEntity
	result := r.db.WithContext(ctx).
		Where("from_address = ?", address).
		Order("id ASC").
		Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get emails by sender: %w", result.Error)
	}

	emails := make([]*Email, 0, len(entities))
	for i := range entities {
		email, err := entityToEmail(&entities[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert entity to email: %w", err)
		}
		emails = append(emails, email)
	}

	return emails, nil
}

// DeleteByID removes an email by ID
func (r *GormEmailRepository) DeleteByID(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&EmailEntity{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete email: %w", result.Error)
	}

	return nil
}

// DeleteAllByID removes all emails with the given IDs
func (r *GormEmailRepository) DeleteAllByID(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Delete(&EmailEntity{}, "id IN ?", ids)
	if result.Error != nil {
		return fmt.Errorf("failed to delete emails: %w", result.Error)
	}

	return nil
}

// Close releases the underlying database connections
func (r *GormEmailRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// Helper function: Convert Email to EmailEntity.
// ModifiedDate is truncated to the microsecond precision every dialect stores.
func emailToEntity(email *Email) (*EmailEntity, error) {
	entity := &EmailEntity{
		ID:              email.ID,
		State:           string(email.State),
		FromAddress:     email.From.Address,
		FromDisplayName: email.From.DisplayName,
		Subject:         email.Subject,
		Body:            email.Body,
		ModifiedDate:    email.ModifiedDate.Truncate(time.Microsecond),
	}

	to, err := marshalAddresses(email.To)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to addresses: %w", err)
	}
	entity.To = to

	cc, err := marshalAddresses(email.Cc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cc addresses: %w", err)
	}
	entity.Cc = cc

	return entity, nil
}

// Helper function: Convert EmailEntity to Email
func entityToEmail(entity *EmailEntity) (*Email, error) {
	email := &Email{
		ID:    entity.ID,
		State: EmailState(entity.State),
		From: EmailAddress{
			Address:     entity.FromAddress,
			DisplayName: entity.FromDisplayName,
		},
		Subject:      entity.Subject,
		Body:         entity.Body,
		ModifiedDate: entity.ModifiedDate,
	}

	to, err := unmarshalAddresses(entity.To)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal to addresses: %w", err)
	}
	email.To = to

	cc, err := unmarshalAddresses(entity.Cc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal cc addresses: %w", err)
	}
	email.Cc = cc

	return email, nil
}

func marshalAddresses(addrs []EmailAddress) (string, error) {
	if addrs == nil {
		return "[]", nil
	}

	data, err := json.Marshal(addrs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalAddresses(data string) ([]EmailAddress, error) {
	addrs := []EmailAddress{}
	if data == "" {
		return addrs, nil
	}

	if err := json.Unmarshal([]byte(data), &addrs); err != nil {
		return nil, err
	}
	if addrs == nil {
		addrs = []EmailAddress{}
	}
	return addrs, nil
}
