package authenticating

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

type Authenticator interface {
	LoginOperator(email, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

// Service autentica o operador único configurado por ambiente
type Service struct {
	operator domain.Operator
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewService(cfg *config.Config) *Service {
	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &Service{
		operator: domain.Operator{
			Email:        handleEmail(cfg.Auth.OperatorEmail),
			PasswordHash: cfg.Auth.OperatorPasswordHash,
		},
		secret: []byte(cfg.Auth.Secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

func (s *Service) LoginOperator(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	if s.operator.PasswordHash == "" {
		logrus.Warn("OPERATOR_PASSWORD_HASH vazio, login desabilitado")
		return "", NewAuthError(ErrOperatorNotSet, apiErrors.ErrInvalidCredentials, "Operador sem senha configurada")
	}

	if handleEmail(email) != s.operator.Email {
		return "", NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Email ou senha incorretos")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.operator.PasswordHash), []byte(password)); err != nil {
		return "", NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Email ou senha incorretos")
	}

	token, err := s.generateJWT()
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	return token, nil
}

func (s *Service) generateJWT() (string, error) {
	now := s.now()
	claims := domain.Claims{
		OperatorEmail: s.operator.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.operator.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid || claims.OperatorEmail != s.operator.Email {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	return claims, nil
}

// HashPassword gera o valor de OPERATOR_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
