package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/domain/entity"
	"catalog-system/internal/domain/repository"
	"catalog-system/pkg/jwt"
	"catalog-system/pkg/password"
	"catalog-system/pkg/validator"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uint, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Authenticate resolves a bearer access token to the calling actor.
	Authenticate(ctx context.Context, accessToken string) (entity.Actor, string, error)
}

type authUsecase struct {
	log        *logrus.Logger
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtService *jwt.JWTService
	hasher     password.Hasher
	validator  *validator.CustomValidator
	now        func() time.Time
}

func NewAuthUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtService *jwt.JWTService,
	hasher password.Hasher,
	validator *validator.CustomValidator,
) AuthUsecase {
	return &authUsecase{
		log:        log,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		hasher:     hasher,
		validator:  validator,
		now:        time.Now,
	}
}

func accessTokenKey(userID uint, tokenID string) string {
	return fmt.Sprintf("access_token:%d:%s", userID, tokenID)
}

func refreshTokenKey(userID uint, tokenID string) string {
	return fmt.Sprintf("refresh_token:%d:%s", userID, tokenID)
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := u.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	now := u.now()
	user.LastLogin = &now
	if err := u.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrRecordGone) {
			return nil, ErrInvalidCredentials
		}
		u.log.Warnf("Failed to update last login: %+v", err)
		return nil, err
	}

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID uint, accessTokenID, refreshToken string) error {
	keys := []string{accessTokenKey(userID, accessTokenID)}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == userID {
			keys = append(keys, refreshTokenKey(userID, claims.TokenID))
		}
	}

	if err := u.tokenRepo.Delete(ctx, keys...); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return err
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	key := refreshTokenKey(claims.UserID, claims.TokenID)
	exists, err := u.tokenRepo.Exists(ctx, key)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Refresh tokens are single use.
	if err := u.tokenRepo.Delete(ctx, key); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	user, err := u.userRepo.FindByKey(ctx, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	return u.issueTokens(ctx, user.ID, user.Username)
}

func (u *authUsecase) Authenticate(ctx context.Context, accessToken string) (entity.Actor, string, error) {
	claims, err := u.jwtService.ValidateToken(accessToken)
	if err != nil || claims.TokenType != jwt.AccessToken {
		return entity.AnonymousActor, "", ErrInvalidToken
	}

	exists, err := u.tokenRepo.Exists(ctx, accessTokenKey(claims.UserID, claims.TokenID))
	if err != nil {
		u.log.Warnf("Failed to check access token: %+v", err)
		return entity.AnonymousActor, "", err
	}
	if !exists {
		return entity.AnonymousActor, "", ErrTokenRevoked
	}

	user, err := u.userRepo.FindByKey(ctx, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return entity.AnonymousActor, "", err
	}
	if user == nil || !user.IsActive {
		return entity.AnonymousActor, "", ErrInvalidToken
	}

	return entity.ActorFromUser(user), claims.TokenID, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uint, username string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, username)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, username)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenRepo.Store(ctx, accessTokenKey(userID, accessTokenID), u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.tokenRepo.Store(ctx, refreshTokenKey(userID, refreshTokenID), u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}
