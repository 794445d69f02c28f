package metaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TokenResponse representa a resposta da API do Meta ao trocar um token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenInfo é o subconjunto de /debug_token usado no health check
type TokenInfo struct {
	IsValid   bool     `json:"is_valid"`
	AppID     string   `json:"app_id"`
	ExpiresAt int64    `json:"expires_at"`
	Scopes    []string `json:"scopes"`
}

// ExpiresIn devolve quanto falta para o token expirar. Tokens sem expiração
// (expires_at = 0) devolvem falso.
func (t *TokenInfo) ExpiresIn(now time.Time) (time.Duration, bool) {
	if t.ExpiresAt == 0 {
		return 0, false
	}
	return time.Unix(t.ExpiresAt, 0).Sub(now), true
}

// ExchangeToken obtém um token de longa duração do Meta
// usando um token de curta duração
func (c *MetaClient) ExchangeToken(ctx context.Context, shortLivedToken string) (*TokenResponse, error) {
	if shortLivedToken == "" {
		return nil, errors.New("token de acesso não pode ser vazio")
	}
	if c.appID == "" || c.appSecret == "" {
		return nil, errors.New("META_APP_ID e META_APP_SECRET são obrigatórios para trocar o token")
	}

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", c.appID)
	params.Add("client_secret", c.appSecret)
	params.Add("fb_exchange_token", shortLivedToken)

	var tokenResp TokenResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("oauth", "access_token"), params, false, &tokenResp); err != nil {
		return nil, errors.Wrap(err, "erro ao obter token de longa duração")
	}

	if tokenResp.AccessToken == "" {
		return nil, errors.New("token retornado pela API é vazio")
	}

	logrus.Infof("Token de longa duração obtido com sucesso. Expira em %s.", FormatDuration(tokenResp.ExpiresIn))

	return &tokenResp, nil
}

// DebugToken consulta /debug_token com o token de aplicativo (app_id|app_secret)
func (c *MetaClient) DebugToken(ctx context.Context) (*TokenInfo, error) {
	if c.appID == "" || c.appSecret == "" {
		return nil, errors.New("META_APP_ID e META_APP_SECRET não configurados")
	}

	params := url.Values{}
	params.Add("input_token", c.accessToken)
	params.Add("access_token", c.appID+"|"+c.appSecret)

	var response struct {
		Data TokenInfo `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("debug_token"), params, false, &response); err != nil {
		return nil, errors.Wrap(err, "erro ao obter informações de debug do token")
	}

	return &response.Data, nil
}

// FormatDuration formata a duração em segundos para um formato legível
func FormatDuration(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	days := duration / (24 * time.Hour)
	hours := (duration % (24 * time.Hour)) / time.Hour
	minutes := (duration % time.Hour) / time.Minute

	return fmt.Sprintf("%d dias, %d horas e %d minutos", days, hours, minutes)
}
