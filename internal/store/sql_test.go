package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"greeting-card-go/internal/model"
)

func newTestSQLStore(t *testing.T) (*SQLStore, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "greetings.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&model.Greeting{}))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewSQLStore(gdb), gdb
}

func assertSameGreetings(t *testing.T, want, got []model.Greeting) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].SenderName, got[i].SenderName)
		assert.Equal(t, want[i].SenderEmail, got[i].SenderEmail)
		assert.Equal(t, want[i].RecipientName, got[i].RecipientName)
		assert.Equal(t, want[i].Message, got[i].Message)
		assert.Equal(t, want[i].Occasion, got[i].Occasion)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "createdAt of %s", want[i].ID)
		assert.True(t, want[i].UpdatedAt.Equal(got[i].UpdatedAt), "updatedAt of %s", want[i].ID)
	}
}

func TestSQLStoreEmptyTable(t *testing.T) {
	s, _ := newTestSQLStore(t)

	greetings, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, greetings)
	assert.Empty(t, greetings)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSQLStoreKeepsInsertionOrder(t *testing.T) {
	s, _ := newTestSQLStore(t)
	ctx := context.Background()

	// ids sort the other way round, so only position can restore this order
	sample := sampleGreetings()
	in := []model.Greeting{sample[1], sample[0]}

	require.NoError(t, s.SaveAll(ctx, in))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assertSameGreetings(t, in, out)
	assert.Equal(t, 0, in[0].Position)
	assert.Equal(t, 0, in[1].Position)
}

func TestSQLStoreSaveOverwritesCollection(t *testing.T) {
	s, gdb := newTestSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, sampleGreetings()))
	require.NoError(t, s.SaveAll(ctx, sampleGreetings()[1:]))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assertSameGreetings(t, sampleGreetings()[1:], out)

	var rows int64
	require.NoError(t, gdb.Model(&model.Greeting{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestSQLStoreEmptySave(t *testing.T) {
	s, _ := newTestSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, sampleGreetings()))
	require.NoError(t, s.SaveAll(ctx, nil))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSQLStoreSavesAcrossBatches(t *testing.T) {
	s, _ := newTestSQLStore(t)
	ctx := context.Background()

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	in := make([]model.Greeting, 250)
	for i := range in {
		in[i] = model.Greeting{
			ID:            fmt.Sprintf("greeting_%d_%09d", 1000-i, i),
			SenderName:    "Bat",
			SenderEmail:   "bat@example.com",
			RecipientName: fmt.Sprintf("Friend %d", i),
			Message:       "Hi",
			Occasion:      model.OccasionHoliday,
			CreatedAt:     ts.Add(time.Duration(i) * time.Millisecond),
			UpdatedAt:     ts.Add(time.Duration(i) * time.Millisecond),
		}
	}

	require.NoError(t, s.SaveAll(ctx, in))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assertSameGreetings(t, in, out)
}

func TestSQLStoreFailedSaveKeepsPreviousRows(t *testing.T) {
	s, _ := newTestSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, sampleGreetings()))

	dup := sampleGreetings()
	dup[1].ID = dup[0].ID
	err := s.SaveAll(ctx, dup)

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "save", storeErr.Op)

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assertSameGreetings(t, sampleGreetings(), out)
}

func TestSQLStoreWrapsErrors(t *testing.T) {
	s, gdb := newTestSQLStore(t)
	ctx := context.Background()

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var storeErr *Error

	_, err = s.LoadAll(ctx)
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "load", storeErr.Op)

	err = s.SaveAll(ctx, sampleGreetings())
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "save", storeErr.Op)

	err = s.Ping(ctx)
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "ping", storeErr.Op)
}
