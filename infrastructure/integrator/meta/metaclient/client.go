package metaclient

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/traffic-autopilot/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxPages limita o número de páginas seguidas por paging.next numa listagem
const maxPages = 200

//go:generate mockgen -source=client.go -destination=mocks/client.go -package=mocks

type Client interface {
	Me(ctx context.Context) error
	ListCampaigns(ctx context.Context, accountID string) ([]metadomain.Campaign, error)
	ListAdSets(ctx context.Context, accountID string) ([]metadomain.AdSet, error)
	GetInsights(ctx context.Context, accountID string, params InsightParams) ([]metadomain.Insight, error)
	GetNode(ctx context.Context, id string) (*metadomain.Node, error)
	UpdateNode(ctx context.Context, id string, fields url.Values) error
	DebugToken(ctx context.Context) (*TokenInfo, error)
	ExchangeToken(ctx context.Context, shortLivedToken string) (*TokenResponse, error)
}

// InsightParams são os filtros de /act_{id}/insights
type InsightParams struct {
	Level string
	Since string
	Until string
}

type Options struct {
	URL         string
	AccessToken string
	AppID       string
	AppSecret   string
	Timeout     time.Duration
	Limiter     *connector.Limiter
	HTTPClient  *http.Client
}

type MetaClient struct {
	url         string
	accessToken string
	appID       string
	appSecret   string
	httpClient  *http.Client
	limiter     *connector.Limiter
}

func NewClient(opts Options) *MetaClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &MetaClient{
		url:         strings.TrimRight(opts.URL, "/"),
		accessToken: opts.AccessToken,
		appID:       opts.AppID,
		appSecret:   opts.AppSecret,
		httpClient:  httpClient,
		limiter:     opts.Limiter,
	}
}

type listResponse[T any] struct {
	Data   []T               `json:"data"`
	Paging metadomain.Paging `json:"paging"`
}

func (c *MetaClient) Me(ctx context.Context) error {
	params := url.Values{}
	params.Set("fields", "id,name")

	var out map[string]any
	return c.get(ctx, c.endpoint("me"), params, &out)
}

func (c *MetaClient) ListCampaigns(ctx context.Context, accountID string) ([]metadomain.Campaign, error) {
	params := url.Values{}
	params.Set("fields", "id,name,status,effective_status,objective,daily_budget")
	params.Set("limit", "200")

	return fetchAll[metadomain.Campaign](ctx, c, c.endpoint(accountPath(accountID), "campaigns"), params)
}

func (c *MetaClient) ListAdSets(ctx context.Context, accountID string) ([]metadomain.AdSet, error) {
	params := url.Values{}
	params.Set("fields", "id,name,status,effective_status,campaign_id,daily_budget")
	params.Set("limit", "200")

	return fetchAll[metadomain.AdSet](ctx, c, c.endpoint(accountPath(accountID), "adsets"), params)
}

// GetInsights busca as métricas diárias (time_increment=1) no nível pedido
func (c *MetaClient) GetInsights(ctx context.Context, accountID string, p InsightParams) ([]metadomain.Insight, error) {
	timeRange, err := json.Marshal(map[string]string{"since": p.Since, "until": p.Until})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao montar time_range")
	}

	params := url.Values{}
	params.Set("level", p.Level)
	params.Set("time_increment", "1")
	params.Set("time_range", string(timeRange))
	params.Set("fields", strings.Join([]string{
		"date_start", "date_stop", "account_id",
		"campaign_id", "campaign_name", "adset_id", "adset_name",
		"spend", "impressions", "clicks", "frequency", "actions", "action_values",
	}, ","))
	params.Set("limit", "500")

	return fetchAll[metadomain.Insight](ctx, c, c.endpoint(accountPath(accountID), "insights"), params)
}

func (c *MetaClient) GetNode(ctx context.Context, id string) (*metadomain.Node, error) {
	params := url.Values{}
	params.Set("fields", "id,name,status,daily_budget")

	var node metadomain.Node
	if err := c.get(ctx, c.endpoint(id), params, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// UpdateNode envia um POST no objeto com os campos alterados (status, daily_budget)
func (c *MetaClient) UpdateNode(ctx context.Context, id string, fields url.Values) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint(id), fields, true, &out); err != nil {
		return err
	}
	if !out.Success {
		return domain.NewTransportFailure(domain.PlatformMeta, errors.Errorf("atualização de %s não confirmada", id))
	}
	return nil
}

func fetchAll[T any](ctx context.Context, c *MetaClient, endpoint string, params url.Values) ([]T, error) {
	items := make([]T, 0)

	var page listResponse[T]
	if err := c.get(ctx, endpoint, params, &page); err != nil {
		return nil, err
	}
	items = append(items, page.Data...)

	for pages := 1; page.Paging.Next != "" && len(page.Data) > 0; pages++ {
		if pages >= maxPages {
			logrus.WithField("endpoint", endpoint).Warnf("Paginação interrompida após %d páginas", maxPages)
			break
		}

		next := page.Paging.Next
		page = listResponse[T]{}
		// a URL de paging.next já carrega a query completa
		if err := c.do(ctx, http.MethodGet, next, nil, false, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Data...)
	}

	return items, nil
}

func (c *MetaClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, params, true, out)
}

// do executa a chamada respeitando o limitador da plataforma. Quando sign é
// verdadeiro acrescenta access_token e appsecret_proof aos parâmetros.
func (c *MetaClient) do(ctx context.Context, method, endpoint string, params url.Values, sign bool, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	if sign {
		params.Set("access_token", c.accessToken)
		if proof := c.appSecretProof(); proof != "" {
			params.Set("appsecret_proof", proof)
		}
	}

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		requestURL := endpoint
		if encoded := params.Encode(); encoded != "" {
			requestURL = endpoint + "?" + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, requestURL, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBufferString(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return errors.Wrap(err, "erro ao criar a requisição")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.NewTransportFailure(domain.PlatformMeta, errors.Wrap(err, "erro ao fazer a requisição"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewTransportFailure(domain.PlatformMeta, errors.Wrap(err, "erro ao ler resposta"))
	}

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewTransportFailure(domain.PlatformMeta, errors.Wrap(err, "erro ao decodificar JSON"))
	}
	return nil
}

// parseError classifica a resposta de erro da Graph API
func (c *MetaClient) parseError(status int, body []byte) error {
	var errResp metadomain.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		cause := errors.Errorf("status %d: %s", status, truncate(string(body), 300))
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return domain.NewAuthFailure(domain.PlatformMeta, cause)
		case status == http.StatusTooManyRequests:
			c.limiter.Penalize()
			return domain.NewRateLimited(domain.PlatformMeta, cause)
		default:
			return domain.NewTransportFailure(domain.PlatformMeta, cause)
		}
	}

	cause := errors.Errorf("(#%d) %s", errResp.Error.Code, errResp.Error.Message)

	logrus.WithFields(logrus.Fields{
		"status":        status,
		"code":          errResp.Error.Code,
		"error_subcode": errResp.Error.ErrorSubcode,
		"type":          errResp.Error.Type,
		"fbtrace_id":    errResp.Error.FBTraceID,
	}).Warn("Erro retornado pela API do Meta")

	switch {
	case errResp.IsTokenExpired() || errResp.IsPermissionDenied():
		return domain.NewAuthFailure(domain.PlatformMeta, cause)
	case errResp.IsRateLimited() || status == http.StatusTooManyRequests:
		c.limiter.Penalize()
		return domain.NewRateLimited(domain.PlatformMeta, cause)
	default:
		return domain.NewTransportFailure(domain.PlatformMeta, cause)
	}
}

// appSecretProof é o HMAC-SHA256 do token usando o app secret como chave
func (c *MetaClient) appSecretProof() string {
	if c.appSecret == "" || c.accessToken == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write([]byte(c.accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *MetaClient) endpoint(parts ...string) string {
	return fmt.Sprintf("%s/%s", c.url, strings.Join(parts, "/"))
}

func accountPath(accountID string) string {
	return "act_" + strings.TrimPrefix(accountID, "act_")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
