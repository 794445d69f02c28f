package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Operator é o único usuário humano do sistema: quem aprova e executa propostas
type Operator struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type Claims struct {
	OperatorEmail string `json:"operator_email"`
	jwt.RegisteredClaims
}
