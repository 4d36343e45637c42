package services

import (
	"errors"
	"strings"
	"time"

	"tableside/entity"
	"tableside/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	DB        *gorm.DB
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{DB: db, jwtSecret: secret, jwtTTL: ttl}
}

// Register creates a staff account; managers invite their own staff.
func (s *AuthService) Register(venueID uint, email, password, name, role string) (*entity.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.DB.Model(&entity.Staff{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("hash password failed")
	}

	if role != "manager" {
		role = "waiter"
	}
	staff := &entity.Staff{
		VenueID:  venueID,
		Email:    email,
		Password: string(hashed),
		Name:     strings.TrimSpace(name),
		Role:     role,
	}
	if err := s.DB.Create(staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// Login checks credentials and issues a terminal token.
func (s *AuthService) Login(email, password string) (string, *entity.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var staff entity.Staff
	if err := s.DB.Where("email = ?", email).First(&staff).Error; err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(staff.ID, staff.VenueID, staff.Role, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", nil, errors.New("cannot generate token")
	}
	return token, &staff, nil
}

func (s *AuthService) Profile(staffID uint) (*entity.Staff, error) {
	var staff entity.Staff
	if err := s.DB.First(&staff, staffID).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}
