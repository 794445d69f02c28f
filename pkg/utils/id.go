package utils

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 12
)

func GenerateID() (string, error) {
	return gonanoid.Generate(characters, idLength)
}

// NewID nunca falha: sem entropia para o nanoid, cai para um uuid. Usado
// onde o id grava um registro que não pode se perder, como a auditoria
// de execuções.
func NewID() string {
	id, err := GenerateID()
	if err != nil {
		return uuid.NewString()
	}
	return id
}
