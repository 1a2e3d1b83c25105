package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPaymentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/v4/payment/request.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data":{"code":100,"message":"Success","authority":"A0000012345"},"errors":[]}`))
	}))
	defer srv.Close()

	g := NewZarinpalGateway()
	authority, err := g.RequestPayment(context.Background(), GatewayRequest{
		MerchantID:  "m-1",
		BaseURL:     srv.URL,
		AmountRials: 1000000,
		CallbackURL: "https://example.com/verify?bookingId=b1",
	})
	require.NoError(t, err)
	assert.Equal(t, "A0000012345", authority)
}

func TestRequestPaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"errors":{"code":-9,"message":"The input params invalid"}}`))
	}))
	defer srv.Close()

	g := NewZarinpalGateway()
	_, err := g.RequestPayment(context.Background(), GatewayRequest{BaseURL: srv.URL})
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "The input params invalid", gwErr.Message)
}

func TestVerifyPaymentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/v4/payment/verify.json", r.URL.Path)
		w.Write([]byte(`{"data":{"code":100,"ref_id":201970000000,"message":"Verified"},"errors":[]}`))
	}))
	defer srv.Close()

	g := NewZarinpalGateway()
	refID, err := g.VerifyPayment(context.Background(), GatewayVerify{
		BaseURL:     srv.URL,
		AmountRials: 1000000,
		Authority:   "A0000012345",
	})
	require.NoError(t, err)
	assert.Equal(t, "201970000000", refID)
}

func TestVerifyPaymentNotSettled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"errors":{"code":-51,"message":"Session is not valid, session is not active paid try"}}`))
	}))
	defer srv.Close()

	g := NewZarinpalGateway()
	_, err := g.VerifyPayment(context.Background(), GatewayVerify{BaseURL: srv.URL, Authority: "A1"})
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
}

func TestGatewayServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewZarinpalGateway()
	_, err := g.VerifyPayment(context.Background(), GatewayVerify{BaseURL: srv.URL, Authority: "A1"})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestGatewayUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	g := NewZarinpalGateway()
	_, err := g.RequestPayment(context.Background(), GatewayRequest{BaseURL: srv.URL})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestGatewayMalformedResponseIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	g := NewZarinpalGateway()
	_, err := g.VerifyPayment(context.Background(), GatewayVerify{BaseURL: srv.URL, Authority: "A1"})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestRials(t *testing.T) {
	assert.Equal(t, int64(1000000), Rials(100000))
	assert.Equal(t, int64(125005), Rials(12500.5))
	assert.Equal(t, int64(0), Rials(0))
}

func TestPaymentURL(t *testing.T) {
	assert.Equal(t,
		"https://www.zarinpal.com/pg/StartPay/A123",
		PaymentURL("https://payment.zarinpal.com", "A123"))
	assert.Equal(t,
		"https://sandbox.zarinpal.com/pg/StartPay/A123",
		PaymentURL("https://sandbox.zarinpal.com", "A123"))
}
