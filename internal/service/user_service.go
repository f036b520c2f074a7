package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(req dto.UserCreateDTO) (*dto.UserResponseDTO, error)
	GetUser(id uint) (*dto.UserResponseDTO, error)
	GetAllUsers() ([]dto.UserResponseDTO, error)
	// Authenticate resolves an auth token key to its active user.
	Authenticate(tokenKey string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// CreateUser creates the user and then issues an auth token through an
// explicit post-creation hook. Token issuance is best effort: a user whose
// token could not be created is still a valid user.
func (s *userService) CreateUser(req dto.UserCreateDTO) (*dto.UserResponseDTO, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsStaff:   req.IsStaff,
		IsActive:  true,
	}
	if err := s.userRepo.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, err
	}

	tokenKey := s.issueToken(&user)

	resp := buildUserDTO(user)
	resp.Token = tokenKey
	return &resp, nil
}

// issueToken is the post-creation hook that replaces implicit
// framework-level event subscriptions: callers that create users invoke it
// directly.
func (s *userService) issueToken(user *model.User) string {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	token := model.AuthToken{Key: key, UserID: user.ID}
	if err := s.userRepo.CreateToken(&token); err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("Failed to issue auth token for new user")
		return ""
	}
	return key
}

func (s *userService) GetUser(id uint) (*dto.UserResponseDTO, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	resp := buildUserDTO(*user)
	return &resp, nil
}

func (s *userService) GetAllUsers() ([]dto.UserResponseDTO, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponseDTO, 0, len(users))
	for _, u := range users {
		resp = append(resp, buildUserDTO(u))
	}
	return resp, nil
}

func (s *userService) Authenticate(tokenKey string) (*model.User, error) {
	if tokenKey == "" {
		return nil, apperrors.ErrInvalidToken
	}
	token, err := s.userRepo.FindTokenByKey(tokenKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if !token.User.IsActive {
		return nil, apperrors.ErrInactiveUser
	}
	return &token.User, nil
}

func buildUserDTO(user model.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsStaff:    user.IsStaff,
		IsActive:   user.IsActive,
		DateJoined: user.CreatedAt,
	}
}
