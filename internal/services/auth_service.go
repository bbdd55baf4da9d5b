package services

import (
	"fmt"
	"log"
	"time"

	"vendo/internal/models"
	"vendo/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication for the operator API. Operators are
// provisioned at boot, not self-registered; buyers never authenticate.
type AuthService struct {
	operatorRepo repositories.OperatorRepository
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(operatorRepo repositories.OperatorRepository, jwtSecret string) *AuthService {
	return &AuthService{
		operatorRepo: operatorRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   24 * time.Hour, // Token valid for 24 hours
	}
}

// SeedOperator creates the bootstrap operator account if it does not exist
// yet. The password is stored bcrypt-hashed.
func (s *AuthService) SeedOperator(username, password string) error {
	if existing, err := s.operatorRepo.GetByUsername(username); err == nil && existing != nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash operator password: %w", err)
	}

	operator := &models.Operator{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := s.operatorRepo.Create(operator); err != nil {
		return fmt.Errorf("failed to seed operator: %w", err)
	}
	return nil
}

// Login authenticates an operator and returns a JWT token if successful.
func (s *AuthService) Login(username, password string) (string, error) {
	operator, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": operator.ID,
		"username":    operator.Username,
		"exp":         time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":         time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
