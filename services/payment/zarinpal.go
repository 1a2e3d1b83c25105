package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// gatewayOKCode is Zarinpal's success code for both request and verify.
const gatewayOKCode = 100

// ZarinpalGateway implements Gateway against the Zarinpal v4 JSON API.
type ZarinpalGateway struct {
	client *http.Client
}

// NewZarinpalGateway creates a gateway client with a bounded timeout.
func NewZarinpalGateway() *ZarinpalGateway {
	return &ZarinpalGateway{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type zarinpalPaymentBody struct {
	MerchantID  string            `json:"merchant_id"`
	Amount      int64             `json:"amount"`
	CallbackURL string            `json:"callback_url"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type zarinpalVerifyBody struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

type zarinpalData struct {
	Code      int         `json:"code"`
	Authority string      `json:"authority"`
	RefID     json.Number `json:"ref_id"`
	Message   string      `json:"message"`
}

// zarinpalEnvelope tolerates Zarinpal's habit of sending [] instead of an
// object for the empty side of data/errors.
type zarinpalEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

func (e *zarinpalEnvelope) decode() (*zarinpalData, string) {
	var data zarinpalData
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &data) == nil && data.Code != 0 {
		return &data, ""
	}
	var gwErr struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if len(e.Errors) > 0 && json.Unmarshal(e.Errors, &gwErr) == nil {
		return nil, gwErr.Message
	}
	return nil, ""
}

// RequestPayment submits a payment request and returns the authority token.
func (g *ZarinpalGateway) RequestPayment(ctx context.Context, req GatewayRequest) (string, error) {
	body := zarinpalPaymentBody{
		MerchantID:  req.MerchantID,
		Amount:      req.AmountRials,
		CallbackURL: req.CallbackURL,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	data, errMsg, err := g.post(ctx, req.BaseURL, "/pg/v4/payment/request.json", body)
	if err != nil {
		return "", err
	}
	if data == nil || data.Code != gatewayOKCode {
		code := 0
		if data != nil {
			code = data.Code
		}
		if errMsg == "" {
			errMsg = "payment initiation failed"
		}
		return "", &GatewayError{Code: code, Message: errMsg}
	}
	return data.Authority, nil
}

// VerifyPayment confirms a payment and returns the settlement reference.
func (g *ZarinpalGateway) VerifyPayment(ctx context.Context, req GatewayVerify) (string, error) {
	body := zarinpalVerifyBody{
		MerchantID: req.MerchantID,
		Amount:     req.AmountRials,
		Authority:  req.Authority,
	}
	data, errMsg, err := g.post(ctx, req.BaseURL, "/pg/v4/payment/verify.json", body)
	if err != nil {
		return "", err
	}
	if data == nil || data.Code != gatewayOKCode {
		code := 0
		if data != nil {
			code = data.Code
		}
		if errMsg == "" {
			errMsg = "verification failed"
		}
		return "", &GatewayError{Code: code, Message: errMsg}
	}
	return data.RefID.String(), nil
}

func (g *ZarinpalGateway) post(ctx context.Context, baseURL, path string, body any) (*zarinpalData, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode gateway request: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, "", fmt.Errorf("%w: unexpected status %d from %s", ErrGatewayUnavailable, resp.StatusCode, url)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: endpoint not found at %s", ErrGatewayUnavailable, url)
	}

	var envelope zarinpalEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", fmt.Errorf("%w: malformed response from %s", ErrGatewayUnavailable, url)
	}
	data, errMsg := envelope.decode()
	return data, errMsg, nil
}

// Rials converts a toman amount to the gateway's minor unit.
func Rials(amount float64) int64 {
	return int64(math.Floor(amount * 10))
}

// PaymentURL builds the payer redirect for an accepted payment request. The
// sandbox host is selected when the configured base URL points at sandbox.
func PaymentURL(baseURL, authority string) string {
	redirectBase := "https://www.zarinpal.com"
	if strings.Contains(baseURL, "sandbox") {
		redirectBase = "https://sandbox.zarinpal.com"
	}
	return redirectBase + "/pg/StartPay/" + authority
}
