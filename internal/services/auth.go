package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/domain/user"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/validate"
)

const DefaultAccessTTL = 24 * time.Hour

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"notblank,max=100"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	// Login returns a signed access token for valid credentials.
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	// IdentityFromToken verifies the token; the role it carries is a hint only.
	IdentityFromToken(ctx context.Context, tokenString string) (domainagg.Identity, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey []byte
	accessTTL    time.Duration
	bcryptCost   int
	now          func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		bcryptCost:   bcrypt.DefaultCost,
		now:          time.Now,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	const op = "Auth.Register"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(op, in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.bcryptCost)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeCollaboratorFailure, op, "hash password", err)
	}

	u := &types.User{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      types.RoleStudent,
		IsActive:  true,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, u.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return domainagg.NewError(domainagg.CodeConflict, op, "email already registered", nil)
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{u}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	as.log.Info("user registered", "user_id", u.ID.String())
	return u, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	const op = "Auth.Login"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid email or password", nil)
	}
	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return "", nil, aggregates.MapError(op, fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 || !users[0].IsActive {
		return "", nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid email or password", nil)
	}
	u := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid email or password", nil)
	}
	tok, err := as.generateAccessToken(u)
	if err != nil {
		return "", nil, domainagg.NewError(domainagg.CodeCollaboratorFailure, op, "sign token", err)
	}
	return tok, u, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecretKey)
}

func (as *authService) IdentityFromToken(_ context.Context, tokenString string) (domainagg.Identity, error) {
	const op = "Auth.IdentityFromToken"
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return domainagg.Identity{}, domainagg.NewError(domainagg.CodeUnauthenticated, op, "missing token", nil)
	}
	claims := &JWTClaims{}
	keyFunc := func(*jwt.Token) (interface{}, error) { return as.jwtSecretKey, nil }
	parsed, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return domainagg.Identity{}, domainagg.NewError(domainagg.CodeUnauthenticated, op, msg, err)
	}
	if !parsed.Valid {
		return domainagg.Identity{}, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid token", nil)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return domainagg.Identity{}, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid subject", err)
	}
	role, _ := user.ParseRole(claims.Role)
	return domainagg.Identity{UserID: userID, Role: role}, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
