package models

import "time"

// Meal time values, in the order clients submit them.
const (
	MealTimeBreakfast = "breakfast"
	MealTimeLunch     = "lunch"
	MealTimeDinner    = "dinner"
)

// Meal type values: who provides the meal.
const (
	MealTypeCompany = "company"
	MealTypeHostel  = "hostel"
)

// Diet type values.
const (
	DietTypeVeg    = "veg"
	DietTypeNonVeg = "nonveg"
)

// Selection status values. Status is set once at creation and never
// advanced; no operation transitions it.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// MealSelection is one user's choice for one meal time on one date.
// Date is stored as an ISO "YYYY-MM-DD" string and matched exactly.
//
// No gorm.Model here: a deleted selection must free its
// (user_id, date, meal_time) slot for re-booking, so soft delete
// would break the unique index.
type MealSelection struct {
	ID         uint      `gorm:"primarykey"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_date_meal_time"`
	Date       string    `gorm:"size:10;not null;uniqueIndex:idx_user_date_meal_time"`
	MealTime   string    `gorm:"size:16;not null;uniqueIndex:idx_user_date_meal_time"`
	MealType   string    `gorm:"size:16;not null"`
	DietType   string    `gorm:"size:16;not null"`
	Status     string    `gorm:"size:16;not null;default:pending"`
	SelectedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
