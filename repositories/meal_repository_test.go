package repositories

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mealdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestDB initializes an isolated in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mealrepo%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.MealSelection{}))
	return db
}

func newSelection(userID uint, date, mealTime, mealType, dietType string) *models.MealSelection {
	return &models.MealSelection{
		UserID:     userID,
		Date:       date,
		MealTime:   mealTime,
		MealType:   mealType,
		DietType:   dietType,
		Status:     models.StatusPending,
		SelectedAt: time.Now(),
	}
}

func TestUpsertOverwritesExistingTriple(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	first, err := repo.FindByTriple(1, "2024-01-10", models.MealTimeLunch)
	require.NoError(t, err)

	second := newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeHostel, models.DietTypeNonVeg)
	second.SelectedAt = time.Now().Add(time.Hour)
	require.NoError(t, repo.Upsert(second))

	var count int64
	db.Model(&models.MealSelection{}).Count(&count)
	assert.Equal(t, int64(1), count, "repeat submission must not create a second row")

	stored, err := repo.FindByTriple(1, "2024-01-10", models.MealTimeLunch)
	require.NoError(t, err)
	assert.Equal(t, models.MealTypeHostel, stored.MealType)
	assert.Equal(t, models.DietTypeNonVeg, stored.DietType)
	// The overwrite keeps the creation-time selection timestamp.
	assert.WithinDuration(t, first.SelectedAt, stored.SelectedAt, time.Minute)
}

func TestUpsertDistinctTriplesCreateSeparateRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeDinner, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(2, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))

	var count int64
	db.Model(&models.MealSelection{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestFindByUserOrdersByDateThenMealTime(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-11", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeBreakfast, models.MealTypeHostel, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeDinner, models.MealTypeCompany, models.DietTypeNonVeg)))
	// Another user's rows must not appear.
	require.NoError(t, repo.Upsert(newSelection(2, "2024-01-01", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))

	selections, err := repo.FindByUser(1)
	require.NoError(t, err)
	require.Len(t, selections, 4)

	// Meal time sorts alphabetically: breakfast, dinner, lunch.
	assert.Equal(t, "2024-01-10", selections[0].Date)
	assert.Equal(t, models.MealTimeBreakfast, selections[0].MealTime)
	assert.Equal(t, models.MealTimeDinner, selections[1].MealTime)
	assert.Equal(t, models.MealTimeLunch, selections[2].MealTime)
	assert.Equal(t, "2024-01-11", selections[3].Date)
}

func TestFindByUserAndDateMatchesExactly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-11", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))

	selections, err := repo.FindByUserAndDate(1, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, "2024-01-10", selections[0].Date)

	selections, err = repo.FindByUserAndDate(1, "2024-01-12")
	require.NoError(t, err)
	assert.Empty(t, selections)
}

func TestDeleteFreesTripleForRebooking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	stored, err := repo.FindByTriple(1, "2024-01-10", models.MealTimeLunch)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(stored))

	_, err = repo.FindByID(stored.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The triple is free again.
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeHostel, models.DietTypeNonVeg)))
	var count int64
	db.Model(&models.MealSelection{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCountByGroup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	// Three users pick company/veg lunch on the 10th, one picks hostel/nonveg.
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(2, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(3, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(4, "2024-01-10", models.MealTimeLunch, models.MealTypeHostel, models.DietTypeNonVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-12", models.MealTimeBreakfast, models.MealTypeCompany, models.DietTypeVeg)))

	rows, err := repo.CountByGroup("", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ordered by date then meal_time; within (2024-01-10, lunch) two groups.
	assert.Equal(t, "2024-01-10", rows[0].Date)
	assert.Equal(t, "2024-01-10", rows[1].Date)
	assert.Equal(t, "2024-01-12", rows[2].Date)

	var lunchTotal int64
	for _, row := range rows[:2] {
		assert.Equal(t, models.MealTimeLunch, row.MealTime)
		lunchTotal += row.Count
	}
	assert.Equal(t, int64(4), lunchTotal)
}

func TestCountByGroupInclusiveBounds(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealSelectionRepository(db)

	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-09", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-10", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-11", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))
	require.NoError(t, repo.Upsert(newSelection(1, "2024-01-12", models.MealTimeLunch, models.MealTypeCompany, models.DietTypeVeg)))

	rows, err := repo.CountByGroup("2024-01-10", "2024-01-11")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-10", rows[0].Date)
	assert.Equal(t, "2024-01-11", rows[1].Date)
}
