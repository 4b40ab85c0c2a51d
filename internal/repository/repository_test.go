package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"studiodesk/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func ptr(v float64) *float64 { return &v }

func sampleBooking(op, date, clock string) domain.Booking {
	return domain.Booking{
		OperatorID:   op,
		ClientName:   "Asha Rao",
		Phone:        "+91 98765 43210",
		Location:     "Goa",
		Deliverables: "300 edited photos",
		Notes:        "sunset slot",
		ShootType:    domain.ShootWedding,
		Date:         date,
		Time:         clock,
		Duration:     120,
		Price:        ptr(10000),
		GST:          ptr(18),
		Advance:      2500,
		Status:       domain.BookingConfirmed,
		CostBreakdown: []domain.CostItem{
			{Label: "Second shooter", Cost: 2000, Vendor: "Lens Co"},
			{Label: "Travel", Cost: 800},
			{Label: "Album", Cost: 1200},
		},
	}
}

func TestBookingRepository_CreateThenListForDate(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()
	in := sampleBooking("op-1", "2026-11-14", "16:30")

	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.ListForDate(ctx, "op-1", "2026-11-14")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
	assert.True(t, in.SameMutableFields(got[0]), "stored %+v", got[0])
	assert.Equal(t, "Album", got[0].CostBreakdown[2].Label)
}

func TestBookingRepository_OperatorScope(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleBooking("op-1", "2026-11-14", "16:30"))
	require.NoError(t, err)

	others, err := repo.ListAll(ctx, "op-2")
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = repo.GetByID(ctx, "op-2", created.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	ok, err := repo.Delete(ctx, "op-2", created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookingRepository_ListAllOrdered(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()
	for _, at := range [][2]string{{"2026-11-15", "09:00"}, {"2026-11-14", "18:00"}, {"2026-11-14", "07:30"}} {
		_, err := repo.Create(ctx, sampleBooking("op-1", at[0], at[1]))
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx, "op-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "07:30", all[0].Time)
	assert.Equal(t, "18:00", all[1].Time)
	assert.Equal(t, "2026-11-15", all[2].Date)

	ranged, err := repo.ListRange(ctx, "op-1", "2026-11-15", "2026-11-30")
	require.NoError(t, err)
	assert.Len(t, ranged, 1)
}

func TestBookingRepository_UpdateReplacesCosts(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()
	created, err := repo.Create(ctx, sampleBooking("op-1", "2026-11-14", "16:30"))
	require.NoError(t, err)

	edit := *created
	edit.Status = domain.BookingCompleted
	edit.PaymentDone = true
	edit.GST = nil
	edit.Notes = ""
	edit.CostBreakdown = []domain.CostItem{{Label: "Prints", Cost: 300}}

	updated, err := repo.Update(ctx, "op-1", created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := repo.GetByID(ctx, "op-1", created.ID)
	require.NoError(t, err)
	assert.True(t, edit.SameMutableFields(*got), "stored %+v", *got)

	costs, err := repo.GetCosts(ctx, "op-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.CostItem{{Label: "Prints", Cost: 300}}, costs)
}

func TestBookingRepository_UpdateMissing(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))

	_, err := repo.Update(context.Background(), "op-1", "nope", sampleBooking("op-1", "2026-11-14", "16:30"))

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingRepository_UpdateCosts(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()
	created, err := repo.Create(ctx, sampleBooking("op-1", "2026-11-14", "16:30"))
	require.NoError(t, err)

	costs, err := repo.UpdateCosts(ctx, "op-1", created.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, costs)

	got, err := repo.GetByID(ctx, "op-1", created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CostBreakdown)
}

func TestBookingRepository_Delete(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	created, err := repo.Create(ctx, sampleBooking("op-1", "2026-11-14", "16:30"))
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, "op-1", created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var orphans int64
	require.NoError(t, db.Model(&bookingCostModel{}).Where("booking_id = ?", created.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	_, err = repo.GetByID(ctx, "op-1", created.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingRepository_ContextDeadline(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := repo.ListAll(ctx, "op-1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnumRepository_Values(t *testing.T) {
	db := setupDB(t)
	rows := []domain.EnumValue{
		{EnumName: domain.EnumShootType, Value: "portrait", Position: 1},
		{EnumName: domain.EnumShootType, Value: "wedding", Position: 0},
		{EnumName: domain.EnumBookingStatus, Value: "pending", Position: 0},
	}
	require.NoError(t, db.Create(&rows).Error)
	repo := NewEnumRepository(db)

	values, err := repo.Values(context.Background(), domain.EnumShootType)
	require.NoError(t, err)
	assert.Equal(t, []string{"wedding", "portrait"}, values)

	none, err := repo.Values(context.Background(), "colour")
	require.NoError(t, err)
	assert.Empty(t, none)
}
