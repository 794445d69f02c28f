package ssoticaclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

func TestGetSales(t *testing.T) {
	params := SalesConsultationParams{StartDate: "2025-03-09", EndDate: "2025-03-10", CNPJ: "123", Token: "tok"}

	tests := []struct {
		name     string
		status   int
		body     string
		validate func(t *testing.T, resp SalesConsultationResponse, err error)
	}{
		{
			name:   "vendas do período",
			status: http.StatusOK,
			body:   `[{"id":1,"data":"2025-03-09","valor_liquido":120.5,"origensCliente":["Redes Sociais"]}]`,
			validate: func(t *testing.T, resp SalesConsultationResponse, err error) {
				require.NoError(t, err)
				require.Len(t, resp, 1)
				assert.InDelta(t, 120.5, resp[0].NetAmount, 0.001)
			},
		},
		{
			name:   "404 é ausência de dados",
			status: http.StatusNotFound,
			validate: func(t *testing.T, resp SalesConsultationResponse, err error) {
				require.NoError(t, err)
				assert.Empty(t, resp)
			},
		},
		{
			name:   "204 é ausência de dados",
			status: http.StatusNoContent,
			validate: func(t *testing.T, resp SalesConsultationResponse, err error) {
				require.NoError(t, err)
				assert.Empty(t, resp)
			},
		},
		{
			name:   "token inválido",
			status: http.StatusUnauthorized,
			validate: func(t *testing.T, resp SalesConsultationResponse, err error) {
				assert.ErrorIs(t, err, domain.ErrConnectorAuthFailure)
			},
		},
		{
			name:   "limite de taxa",
			status: http.StatusTooManyRequests,
			validate: func(t *testing.T, resp SalesConsultationResponse, err error) {
				assert.ErrorIs(t, err, domain.ErrConnectorRateLimited)
			},
		},
		{
			name:   "erro do servidor",
			status: http.StatusInternalServerError,
			validate: func(t *testing.T, resp SalesConsultationResponse, err error) {
				assert.ErrorIs(t, err, domain.ErrConnectorTransportFailure)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/integracoes/vendas/periodo", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				assert.Equal(t, "2025-03-09", r.URL.Query().Get("inicio_periodo"))
				assert.Equal(t, "123", r.URL.Query().Get("cnpj"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL+"/api/v1", 0, nil)
			resp, err := client.GetSales(context.Background(), params)
			tt.validate(t, resp, err)
		})
	}
}
