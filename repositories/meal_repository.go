package repositories

import (
	"mealdesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MealStatRow is one grouped count produced by CountByGroup:
// how many selections exist for a (date, mealTime, mealType, dietType)
// combination. Rows arrive ordered by date then meal_time.
type MealStatRow struct {
	Date     string
	MealTime string
	MealType string
	DietType string
	Count    int64
}

// MealSelectionRepository interface defines MealSelection-related database operations
type MealSelectionRepository interface {
	Upsert(selection *models.MealSelection) error
	FindByID(id uint) (*models.MealSelection, error)
	FindByTriple(userID uint, date, mealTime string) (*models.MealSelection, error)
	FindByUser(userID uint) ([]models.MealSelection, error)
	FindByUserAndDate(userID uint, date string) ([]models.MealSelection, error)
	Delete(selection *models.MealSelection) error
	CountByGroup(startDate, endDate string) ([]MealStatRow, error)
}

// mealSelectionRepository implements the MealSelectionRepository interface
type mealSelectionRepository struct {
	db *gorm.DB
}

// NewMealSelectionRepository creates a new MealSelectionRepository instance
func NewMealSelectionRepository(db *gorm.DB) MealSelectionRepository {
	return &mealSelectionRepository{db: db}
}

// Upsert inserts the selection or, when a row already exists for the
// same (user_id, date, meal_time), overwrites its meal_type/diet_type
// in place. selected_at is set at creation only and survives an
// overwrite. The conflict resolution happens in a single statement so
// a concurrent race on the same triple never surfaces a duplicate-key
// error; the unique index guarantees exactly one row survives.
func (r *mealSelectionRepository) Upsert(selection *models.MealSelection) error {
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "meal_time"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"meal_type", "diet_type", "updated_at",
		}),
	}).Create(selection)
	return result.Error
}

// FindByID finds a MealSelection by ID
func (r *mealSelectionRepository) FindByID(id uint) (*models.MealSelection, error) {
	var selection models.MealSelection
	result := r.db.First(&selection, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &selection, nil
}

// FindByTriple finds the unique MealSelection for (userID, date, mealTime).
func (r *mealSelectionRepository) FindByTriple(userID uint, date, mealTime string) (*models.MealSelection, error) {
	var selection models.MealSelection
	result := r.db.Where("user_id = ? AND date = ? AND meal_time = ?", userID, date, mealTime).
		First(&selection)
	if result.Error != nil {
		return nil, result.Error
	}
	return &selection, nil
}

// FindByUser returns all of a user's selections ordered by date then
// meal_time. meal_time is a varchar so the order is alphabetical over
// the labels (breakfast, dinner, lunch), matching the exposed API.
func (r *mealSelectionRepository) FindByUser(userID uint) ([]models.MealSelection, error) {
	var selections []models.MealSelection
	result := r.db.Where("user_id = ?", userID).
		Order("date ASC").Order("meal_time ASC").
		Find(&selections)
	if result.Error != nil {
		return nil, result.Error
	}
	return selections, nil
}

// FindByUserAndDate returns a user's selections for one exact date value.
func (r *mealSelectionRepository) FindByUserAndDate(userID uint, date string) ([]models.MealSelection, error) {
	var selections []models.MealSelection
	result := r.db.Where("user_id = ? AND date = ?", userID, date).Find(&selections)
	if result.Error != nil {
		return nil, result.Error
	}
	return selections, nil
}

// Delete removes a MealSelection. The model has no DeletedAt column so
// this is a hard delete and frees the triple for a new selection.
func (r *mealSelectionRepository) Delete(selection *models.MealSelection) error {
	result := r.db.Delete(selection)
	return result.Error
}

// CountByGroup runs the grouping stage of the meal statistics report:
// selection counts grouped by (date, meal_time, meal_type, diet_type),
// restricted to date BETWEEN startDate AND endDate inclusive when both
// bounds are given. ISO date strings compare correctly as text.
func (r *mealSelectionRepository) CountByGroup(startDate, endDate string) ([]MealStatRow, error) {
	query := r.db.Model(&models.MealSelection{}).
		Select("date, meal_time, meal_type, diet_type, COUNT(*) AS count").
		Group("date").Group("meal_time").Group("meal_type").Group("diet_type").
		Order("date ASC").Order("meal_time ASC")

	if startDate != "" && endDate != "" {
		query = query.Where("date BETWEEN ? AND ?", startDate, endDate)
	}

	var rows []MealStatRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
