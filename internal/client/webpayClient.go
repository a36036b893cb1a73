package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"levelup-shop/internal/config"
)

// WebpayClient is the Webpay Plus REST contract the payment service consumes.
// Only the three transaction operations are used; the rest of the gateway's
// surface stays out of this codebase.
type WebpayClient interface {
	CreateTransaction(ctx context.Context, buyOrder, sessionID string, amount decimal.Decimal, returnURL string) (*CreateTransactionResponse, error)
	CommitTransaction(ctx context.Context, token string) (*TransactionResult, error)
	TransactionStatus(ctx context.Context, token string) (*TransactionResult, error)
}

type webpayClientImpl struct {
	httpClient   *http.Client
	baseApiURL   string
	commerceCode string
	apiKey       string
}

type CreateTransactionResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type TransactionResult struct {
	Status             string          `json:"status"`
	BuyOrder           string          `json:"buy_order"`
	SessionID          string          `json:"session_id"`
	Amount             decimal.Decimal `json:"amount"`
	AuthorizationCode  string          `json:"authorization_code"`
	PaymentTypeCode    string          `json:"payment_type_code"`
	ResponseCode       int             `json:"response_code"`
	InstallmentsNumber int             `json:"installments_number"`
	CardDetail         struct {
		CardNumber string `json:"card_number"`
	} `json:"card_detail"`
}

// StatusAuthorized is the only gateway status that settles a payment.
const StatusAuthorized = "AUTHORIZED"

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

func NewWebpayClient(webpayCfg *config.Webpay) WebpayClient {
	return &webpayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:   webpayCfg.BaseApiURL,
		commerceCode: webpayCfg.CommerceCode,
		apiKey:       webpayCfg.ApiKey,
	}
}

func (c *webpayClientImpl) CreateTransaction(ctx context.Context, buyOrder, sessionID string, amount decimal.Decimal, returnURL string) (*CreateTransactionResponse, error) {
	payload := map[string]interface{}{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount,
		"return_url": returnURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+transactionsPath,
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpay create request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("webpay error %d: %s", resp.StatusCode, string(b))
	}

	var result CreateTransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode webpay response: %w", err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("webpay response missing token")
	}

	return &result, nil
}

func (c *webpayClientImpl) CommitTransaction(ctx context.Context, token string) (*TransactionResult, error) {
	return c.transactionRequest(ctx, http.MethodPut, token)
}

func (c *webpayClientImpl) TransactionStatus(ctx context.Context, token string) (*TransactionResult, error) {
	return c.transactionRequest(ctx, http.MethodGet, token)
}

func (c *webpayClientImpl) transactionRequest(ctx context.Context, method, token string) (*TransactionResult, error) {
	url := fmt.Sprintf("%s%s/%s", c.baseApiURL, transactionsPath, token)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpay %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("webpay error %d: %s", resp.StatusCode, string(b))
	}

	var result TransactionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode webpay response: %w", err)
	}

	return &result, nil
}

func (c *webpayClientImpl) setHeaders(req *http.Request) {
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
