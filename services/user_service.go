package services

import (
	"errors"
	"fmt"

	"mealdesk/models"
	"mealdesk/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The UserService interface defines the credential store operations:
// registration, credential verification, and lookups.
type UserService interface {
	Register(input *RegisterInput) (*models.User, error)
	Authenticate(username, password string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	ListUsers() ([]models.User, error)
}

// RegisterInput is the registration request body. Identity fields are
// immutable after creation; there is no update path.
type RegisterInput struct {
	Name       string `json:"name" validate:"required"`
	Username   string `json:"username" validate:"required"`
	EmployeeID string `json:"employeeId" validate:"required"`
	Department string `json:"department" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
}

// The userService structure is the implementation of the UserService interface
type userService struct {
	repo repositories.UserRepository
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register creates a new user account. The raw password is hashed with
// bcrypt here and never stored or logged; registration fails with
// ErrConflict when the username or employee id is already taken.
func (s *userService) Register(input *RegisterInput) (*models.User, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByUsernameOrEmployeeID(input.Username, input.EmployeeID)
	if err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Name:       input.Name,
		Username:   input.Username,
		EmployeeID: input.EmployeeID,
		Department: input.Department,
		Password:   string(hashedPassword),
		Role:       models.RoleUser,
	}

	if err := s.repo.Create(&user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// Authenticate verifies a username/password pair. Lookup failure and
// hash mismatch both come back as ErrInvalidCredentials so the caller
// cannot tell whether the account exists.
func (s *userService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// bcrypt comparison is constant-time over the hash.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a single user by id.
func (s *userService) GetByID(id uint) (*models.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("retrieving user: %w", err)
	}
	return user, nil
}

// ListUsers returns every registered user. Role gating happens at the
// route filter; the service itself is access-agnostic.
func (s *userService) ListUsers() ([]models.User, error) {
	users, err := s.repo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("retrieving users: %w", err)
	}
	return users, nil
}
