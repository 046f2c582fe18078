package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-system/internal/converter"
	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/domain/entity"
	"catalog-system/internal/domain/repository"
	"catalog-system/pkg/password"
	"catalog-system/pkg/validator"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrSuperuserProtected = errors.New("superusers can't be modified")
)

const usernameTakenMessage = "A user with that username already exists."

// UsernameExistsError names the username that caused ErrUsernameExists.
type UsernameExistsError struct {
	Username string
}

func (e *UsernameExistsError) Error() string {
	return fmt.Sprintf("User with username %s already exists", e.Username)
}

func (e *UsernameExistsError) Unwrap() error {
	return ErrUsernameExists
}

type UserUsecase interface {
	GetAll(ctx context.Context) ([]dto.UserResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id uint) error
	CreateSuperuser(ctx context.Context, username, email, plainPassword string) (*dto.UserResponse, error)
}

type userUsecase struct {
	log       *logrus.Logger
	userRepo  repository.UserRepository
	hasher    password.Hasher
	validator *validator.CustomValidator
}

func NewUserUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	hasher password.Hasher,
	validator *validator.CustomValidator,
) UserUsecase {
	return &userUsecase{
		log:       log,
		userRepo:  userRepo,
		hasher:    hasher,
		validator: validator,
	}
}

func (u *userUsecase) GetAll(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := u.userRepo.ListAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}

	return converter.UsersToResponses(users), nil
}

func (u *userUsecase) GetByID(ctx context.Context, id uint) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// Create checks the username before validating the payload so a duplicate
// never reaches password hashing.
func (u *userUsecase) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if req.Username != "" {
		exists, err := u.userRepo.ExistsByUsername(ctx, req.Username)
		if err != nil {
			u.log.Warnf("Failed to check username: %+v", err)
			return nil, err
		}
		if exists {
			return nil, &UsernameExistsError{Username: req.Username}
		}
	}

	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	hashedPassword, err := u.hasher.Hash(req.Password)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hashedPassword,
		IsActive:  true,
		IsStaff:   true,
	}

	if err := u.userRepo.Save(ctx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, &UsernameExistsError{Username: req.Username}
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// Update rejects missing users and superusers before the payload is looked
// at; a nil request stands for a body that could not be decoded.
func (u *userUsecase) Update(ctx context.Context, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsSuperuser {
		return nil, ErrSuperuserProtected
	}
	if req == nil {
		return nil, ErrInvalidPayload
	}

	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	if req.Username != user.Username {
		taken, err := u.userRepo.FindByUsername(ctx, req.Username)
		if err != nil {
			u.log.Warnf("Failed to check username: %+v", err)
			return nil, err
		}
		if taken != nil && taken.ID != user.ID {
			return nil, validator.NewFieldError("username", usernameTakenMessage)
		}
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.Password != "" {
		hashedPassword, err := u.hasher.Hash(req.Password)
		if err != nil {
			u.log.Warnf("Failed to hash password: %+v", err)
			return nil, err
		}
		user.Password = hashedPassword
	}

	if err := u.userRepo.Save(ctx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, validator.NewFieldError("username", usernameTakenMessage)
		}
		if errors.Is(err, repository.ErrRecordGone) {
			return nil, ErrUserNotFound
		}
		u.log.Warnf("Failed to update user: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

func (u *userUsecase) Delete(ctx context.Context, id uint) error {
	user, err := u.findUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsSuperuser {
		return ErrSuperuserProtected
	}

	if err := u.userRepo.Delete(ctx, user); err != nil {
		u.log.Warnf("Failed to delete user: %+v", err)
		return err
	}

	return nil
}

// CreateSuperuser is only reachable from the command line; the HTTP API
// can never grant superuser status.
func (u *userUsecase) CreateSuperuser(ctx context.Context, username, email, plainPassword string) (*dto.UserResponse, error) {
	req := &dto.CreateUserRequest{Username: username, Email: email, Password: plainPassword}
	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	exists, err := u.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &UsernameExistsError{Username: username}
	}

	hashedPassword, err := u.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:    username,
		Email:       email,
		Password:    hashedPassword,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := u.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	u.log.WithField("username", username).Info("Superuser created")

	return converter.UserToResponse(user), nil
}

func (u *userUsecase) findUser(ctx context.Context, id uint) (*entity.User, error) {
	user, err := u.userRepo.FindByKey(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// isDuplicateKeyError checks for a unique violation. Postgres errors are
// matched on the constraint name; other drivers rely on gorm's translation.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
