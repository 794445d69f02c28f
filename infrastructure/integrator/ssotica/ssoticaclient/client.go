package ssoticaclient

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:generate mockgen -source=client.go -destination=mocks/client.go -package=mocks

type Client interface {
	GetSales(ctx context.Context, params SalesConsultationParams) (SalesConsultationResponse, error)
}

type SSOticaClient struct {
	httpClient *http.Client
	url        string
	limiter    *connector.Limiter
}

// NewClient cria uma nova instância do cliente da API do SSOtica
func NewClient(url string, timeout time.Duration, limiter *connector.Limiter) *SSOticaClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &SSOticaClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:     url,
		limiter: limiter,
	}
}
