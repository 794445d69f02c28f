package apiErrors

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro da API
const (
	// Erros de autenticação
	ErrInvalidCredentials = "AUTH_001" // Credenciais inválidas
	ErrInvalidToken       = "AUTH_006" // Token inválido
	ErrExpiredToken       = "AUTH_007" // Token expirado

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrRouteNotFound       = "VAL_004" // Rota inexistente
	ErrMethodNotAllowed    = "VAL_005" // Método não suportado pela rota

	// Erros de conectores
	ErrConnectorNotFound   = "CONN_001" // Conector não encontrado
	ErrUnsupportedPlatform = "CONN_002" // Plataforma ou modo sem implementação

	// Erros de propostas
	ErrProposalNotFound     = "PROP_001" // Proposta não encontrada
	ErrInvalidProposalState = "PROP_002" // Transição de estado não permitida

	// Erros de regras
	ErrRuleNotFound = "RULE_001" // Regra não encontrada

	// Erros do ciclo de controle
	ErrCycleRunning   = "CYC_001" // Ciclo já em andamento
	ErrModeNotAllowed = "CYC_002" // Modo mais permissivo que o configurado

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
	ErrCommunication     = "SRV_004" // Erro de comunicação
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidCredentials:   http.StatusUnauthorized,
	ErrInvalidToken:         http.StatusUnauthorized,
	ErrExpiredToken:         http.StatusUnauthorized,
	ErrInvalidRequest:       http.StatusBadRequest,
	ErrMissingRequiredData:  http.StatusBadRequest,
	ErrInvalidFormat:        http.StatusBadRequest,
	ErrRouteNotFound:        http.StatusNotFound,
	ErrMethodNotAllowed:     http.StatusMethodNotAllowed,
	ErrConnectorNotFound:    http.StatusNotFound,
	ErrUnsupportedPlatform:  http.StatusBadRequest,
	ErrProposalNotFound:     http.StatusNotFound,
	ErrInvalidProposalState: http.StatusConflict,
	ErrRuleNotFound:         http.StatusNotFound,
	ErrCycleRunning:         http.StatusConflict,
	ErrModeNotAllowed:       http.StatusForbidden,
	ErrInternalServer:       http.StatusInternalServerError,
	ErrDatabaseOperation:    http.StatusInternalServerError,
	ErrExternalService:      http.StatusBadGateway,
	ErrCommunication:        http.StatusServiceUnavailable,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// StatusFor devolve o status HTTP de um código
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// CodeFor classifica erros de domínio no código de API correspondente
func CodeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrProposalNotFound):
		return ErrProposalNotFound
	case errors.Is(err, domain.ErrInvalidProposalState):
		return ErrInvalidProposalState
	case errors.Is(err, domain.ErrConnectorNotFound):
		return ErrConnectorNotFound
	case errors.Is(err, domain.ErrUnsupportedPlatform):
		return ErrUnsupportedPlatform
	case errors.Is(err, domain.ErrRuleNotFound):
		return ErrRuleNotFound
	case errors.Is(err, domain.ErrConnectorAuthFailure),
		errors.Is(err, domain.ErrConnectorTransportFailure),
		errors.Is(err, domain.ErrConnectorRateLimited):
		return ErrExternalService
	}
	return ErrInternalServer
}

// WriteDomainError escreve um erro de domínio com o código que ele merece
func WriteDomainError(w http.ResponseWriter, err error) {
	WriteError(w, CodeFor(err), err.Error(), nil)
}

// FromError cria um erro de API a partir de um erro Go
// Útil para quando você quer envolver um erro existente em um erro de API
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
