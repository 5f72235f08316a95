package services

import (
	"errors"
	"fmt"
	"time"

	"mealdesk/models"
	"mealdesk/repositories"

	"gorm.io/gorm"
)

// The MealService interface defines selection bookkeeping and the
// statistics report over all users' selections.
type MealService interface {
	Upsert(userID uint, input *SelectionInput) (*models.MealSelection, error)
	ListForUser(userID uint) ([]models.MealSelection, error)
	ListForUserOnDate(userID uint, date string) ([]models.MealSelection, error)
	Delete(selectionID uint, requestingUserID uint) error
	MealStats(startDate, endDate string) ([]StatRow, error)
}

// SelectionInput is the submit/overwrite request body.
type SelectionInput struct {
	Date     string `json:"date" validate:"required"`
	MealTime string `json:"mealTime" validate:"required,oneof=breakfast lunch dinner"`
	MealType string `json:"mealType" validate:"required,oneof=company hostel"`
	DietType string `json:"dietType" validate:"required,oneof=veg nonveg"`
}

// StatBreakdown is one (mealType, dietType) slice of a StatRow.
type StatBreakdown struct {
	MealType string `json:"mealType"`
	DietType string `json:"dietType"`
	Count    int64  `json:"count"`
}

// StatRow aggregates all selections for one (date, mealTime): the
// per-type breakdown plus the total across it.
type StatRow struct {
	Date      string          `json:"date"`
	MealTime  string          `json:"mealTime"`
	Total     int64           `json:"total"`
	Breakdown []StatBreakdown `json:"breakdown"`
}

// The mealService structure is the implementation of the MealService interface
type mealService struct {
	repo repositories.MealSelectionRepository
}

var _ MealService = (*mealService)(nil)

// NewMealService creates a new MealService instance
func NewMealService(repo repositories.MealSelectionRepository) MealService {
	return &mealService{repo: repo}
}

// Upsert records a selection for (userID, date, mealTime). A repeat
// submission for the same triple overwrites mealType/dietType on the
// existing row; the repository resolves the race atomically so at most
// one row ever exists per triple.
func (s *mealService) Upsert(userID uint, input *SelectionInput) (*models.MealSelection, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	selection := models.MealSelection{
		UserID:     userID,
		Date:       input.Date,
		MealTime:   input.MealTime,
		MealType:   input.MealType,
		DietType:   input.DietType,
		Status:     models.StatusPending,
		SelectedAt: time.Now(),
	}

	if err := s.repo.Upsert(&selection); err != nil {
		return nil, fmt.Errorf("saving selection: %w", err)
	}

	// Re-read by triple: on the update path the driver does not report
	// the surviving row's id back through the insert.
	stored, err := s.repo.FindByTriple(userID, input.Date, input.MealTime)
	if err != nil {
		return nil, fmt.Errorf("reading back selection: %w", err)
	}
	return stored, nil
}

// ListForUser returns all of a user's selections, date ascending then
// meal time ascending (alphabetical over the labels).
func (s *mealService) ListForUser(userID uint) ([]models.MealSelection, error) {
	selections, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("retrieving selections: %w", err)
	}
	return selections, nil
}

// ListForUserOnDate returns the user's selections whose stored date
// equals the given value exactly.
func (s *mealService) ListForUserOnDate(userID uint, date string) ([]models.MealSelection, error) {
	selections, err := s.repo.FindByUserAndDate(userID, date)
	if err != nil {
		return nil, fmt.Errorf("retrieving selections: %w", err)
	}
	return selections, nil
}

// Delete removes a selection. Only the owning user may delete it;
// anyone else gets ErrUnauthorized and the row stays untouched.
func (s *mealService) Delete(selectionID uint, requestingUserID uint) error {
	selection, err := s.repo.FindByID(selectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("retrieving selection: %w", err)
	}

	if selection.UserID != requestingUserID {
		return ErrUnauthorized
	}

	if err := s.repo.Delete(selection); err != nil {
		return fmt.Errorf("deleting selection: %w", err)
	}
	return nil
}

// MealStats builds the admin report. Stage one is the grouped count
// query in the repository; stage two folds those rows into one StatRow
// per (date, mealTime). Rows arrive ordered by date then meal time, so
// a run of equal keys maps to one output row and the result keeps that
// order. When only one bound is given the range is ignored, matching
// the query contract: both or neither.
func (s *mealService) MealStats(startDate, endDate string) ([]StatRow, error) {
	grouped, err := s.repo.CountByGroup(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("aggregating selections: %w", err)
	}

	stats := make([]StatRow, 0)
	for _, row := range grouped {
		n := len(stats)
		if n == 0 || stats[n-1].Date != row.Date || stats[n-1].MealTime != row.MealTime {
			stats = append(stats, StatRow{Date: row.Date, MealTime: row.MealTime})
			n++
		}
		stats[n-1].Breakdown = append(stats[n-1].Breakdown, StatBreakdown{
			MealType: row.MealType,
			DietType: row.DietType,
			Count:    row.Count,
		})
		stats[n-1].Total += row.Count
	}
	return stats, nil
}
