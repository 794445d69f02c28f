package ssoticaclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/pkg/errors"
	ssoticadomain "github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica/domain"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

type SalesConsultationParams struct {
	StartDate string
	EndDate   string
	CNPJ      string
	Token     string
}

type SalesConsultationResponse []ssoticadomain.Order

// GetSales consulta as vendas do período. 404 e 204 significam que não há
// vendas e devolvem uma lista vazia.
func (c *SSOticaClient) GetSales(ctx context.Context, params SalesConsultationParams) (SalesConsultationResponse, error) {
	response := SalesConsultationResponse{}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Construir a URL da requisição.
	endpoint, err := url.Parse(c.url)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao analisar a URL base")
	}
	endpoint.Path = path.Join(endpoint.Path, "/integracoes/vendas/periodo")

	// Adicionar parâmetros de consulta.
	query := endpoint.Query()
	query.Set("inicio_periodo", params.StartDate)
	query.Set("fim_periodo", params.EndDate)
	query.Set("cnpj", params.CNPJ)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar a requisição")
	}

	req.Header.Set("Authorization", "Bearer "+params.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewTransportFailure(domain.PlatformSSOtica, errors.Wrap(err, "erro ao executar a requisição"))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return response, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.NewAuthFailure(domain.PlatformSSOtica, errors.Errorf("requisição falhou com status: %s", resp.Status))
	case http.StatusTooManyRequests:
		c.limiter.Penalize()
		return nil, domain.NewRateLimited(domain.PlatformSSOtica, errors.Errorf("requisição falhou com status: %s", resp.Status))
	default:
		return nil, domain.NewTransportFailure(domain.PlatformSSOtica, errors.Errorf("requisição falhou com status: %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportFailure(domain.PlatformSSOtica, errors.Wrap(err, "erro ao ler a resposta"))
	}
	if len(body) == 0 {
		return response, nil
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewTransportFailure(domain.PlatformSSOtica, errors.Wrap(err, "erro ao decodificar a resposta"))
	}

	return response, nil
}
