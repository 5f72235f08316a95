package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"mealdesk/models"
	"mealdesk/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestDB initializes an isolated in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mealsvc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.MealSelection{}))
	return db
}

func newUserService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewUserService(repositories.NewUserRepository(db)), db
}

func validRegisterInput() *RegisterInput {
	return &RegisterInput{
		Name:       "Alice Smith",
		Username:   "alice",
		EmployeeID: "EMP-0001",
		Department: "Engineering",
		Password:   "supersecret",
	}
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, _ := newUserService(t)

		user, err := svc.Register(validRegisterInput())
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEqual(t, "supersecret", user.Password, "raw password must never be stored")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecret")))
	})

	t.Run("Duplicate username", func(t *testing.T) {
		svc, _ := newUserService(t)
		_, err := svc.Register(validRegisterInput())
		require.NoError(t, err)

		input := validRegisterInput()
		input.EmployeeID = "EMP-0002"
		_, err = svc.Register(input)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Duplicate employee id", func(t *testing.T) {
		svc, _ := newUserService(t)
		_, err := svc.Register(validRegisterInput())
		require.NoError(t, err)

		input := validRegisterInput()
		input.Username = "alice2"
		_, err = svc.Register(input)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Validation reports every violated field", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.Register(&RegisterInput{
			Username: "alice",
			Password: "short",
		})
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"name", "employeeId", "department", "password"}, fields)
	})
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Register(validRegisterInput())
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Authenticate("alice", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("alice", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := svc.Authenticate("nobody", "supersecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetByID(t *testing.T) {
	svc, _ := newUserService(t)
	user, err := svc.Register(validRegisterInput())
	require.NoError(t, err)

	found, err := svc.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, found.Username)

	_, err = svc.GetByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Register(validRegisterInput())
	require.NoError(t, err)

	input := validRegisterInput()
	input.Username = "bob"
	input.EmployeeID = "EMP-0002"
	_, err = svc.Register(input)
	require.NoError(t, err)

	users, err := svc.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
