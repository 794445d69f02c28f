package metadomain

import "slices"

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// Códigos de limite de taxa: aplicação (4), usuário (17), conta de anúncios
// (613, 80004) e chamadas por página (32)
var rateLimitCodes = []int{4, 17, 32, 613, 80004}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

func (e *ErrorResponse) IsRateLimited() bool {
	return slices.Contains(rateLimitCodes, e.Error.Code)
}

// IsPermissionDenied cobre token sem escopo para a conta (10, 200-299)
func (e *ErrorResponse) IsPermissionDenied() bool {
	return e.Error.Code == 10 || (e.Error.Code >= 200 && e.Error.Code < 300)
}
