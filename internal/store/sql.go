package store

import (
	"context"

	"gorm.io/gorm"

	"greeting-card-go/internal/model"
)

// SQLStore keeps the collection in a greetings table. SaveAll replaces every
// row inside one transaction; the position column preserves insertion order.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps an initialised gorm connection
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// LoadAll reads every row ordered by position
func (s *SQLStore) LoadAll(ctx context.Context) ([]model.Greeting, error) {
	greetings := []model.Greeting{}
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&greetings).Error; err != nil {
		return nil, wrap("load", err)
	}
	return greetings, nil
}

// SaveAll deletes all rows and inserts greetings in order
func (s *SQLStore) SaveAll(ctx context.Context, greetings []model.Greeting) error {
	rows := make([]model.Greeting, len(greetings))
	for i, g := range greetings {
		g.Position = i
		rows[i] = g
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Greeting{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	return wrap("save", err)
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
