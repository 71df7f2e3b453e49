package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/checkout"
	"github.com/cellex-webapp/cellex-storefront/pkg/commerce"
	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	"github.com/cellex-webapp/cellex-storefront/pkg/countdown"
	"github.com/cellex-webapp/cellex-storefront/pkg/coupon"
	"github.com/cellex-webapp/cellex-storefront/pkg/search"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestGateway wires the gateway against a stub commerce backend. Cart
// routes are not exercised here; the cart packages have their own tests.
func newTestGateway(t *testing.T, backend http.Handler) *Gateway {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	cfg := &config.Config{
		Checkout: config.CheckoutConfig{RedirectCountdown: 6},
	}
	client := commerce.NewClient(&config.CommerceConfig{Timeout: 5 * time.Second}, srv.URL, logger)

	checkouts := checkout.NewOrchestrator(
		client,
		checkout.NewMemoryRedirectStore(),
		nil,
		nil,
		countdown.SystemClock(),
		cfg.Checkout.RedirectCountdown,
		logger,
	)
	coupons := coupon.NewService(client, nil, logger)
	searches := search.NewService(client, search.NewDebouncer(0), logger)

	gw := NewGateway(cfg, logger, client, nil, nil, coupons, checkouts, searches, nil)
	gw.SetupRoutes()
	return gw
}

func doRequest(t *testing.T, gw *Gateway, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Id", "test-session")

	w := httptest.NewRecorder()
	gw.Router().ServeHTTP(w, req)

	var envelope map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func stubCommerce(t *testing.T, route func(w http.ResponseWriter, r *http.Request) (int, string, any)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, message, result := route(w, r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    code,
			"message": message,
			"result":  result,
		})
	})
}

func orderResult(extra map[string]any) map[string]any {
	order := map[string]any{
		"id":              "O1",
		"subtotal":        500000,
		"discount_amount": 0,
		"shipping_fee":    0,
		"total_amount":    500000,
		"status":          "PENDING",
	}
	for k, v := range extra {
		order[k] = v
	}
	return order
}

func TestGetOrderProjectsStatusTag(t *testing.T) {
	gw := newTestGateway(t, stubCommerce(t, func(w http.ResponseWriter, r *http.Request) (int, string, any) {
		return commerce.CodeSuccess, "", orderResult(nil)
	}))

	w, envelope := doRequest(t, gw, http.MethodGet, "/api/v1/orders/O1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, commerce.CodeSuccess, envelope["code"])

	result := envelope["result"].(map[string]any)
	tag := result["status_tag"].(map[string]any)
	require.Equal(t, "PENDING", tag["status"])
	require.Equal(t, "Awaiting confirmation", tag["label"])
	require.Equal(t, "gold", tag["color"])
}

func TestApplyCouponBusinessRejectionKeepsBackendMessage(t *testing.T) {
	gw := newTestGateway(t, stubCommerce(t, func(w http.ResponseWriter, r *http.Request) (int, string, any) {
		return 4201, "coupon has expired", nil
	}))

	w, envelope := doRequest(t, gw, http.MethodPost, "/api/v1/orders/O1/coupon", `{"code":"OLD10"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.EqualValues(t, 4201, envelope["code"])
	require.Equal(t, "coupon has expired", envelope["message"])
}

func TestCheckoutVNPayThenRedirectLifecycle(t *testing.T) {
	gw := newTestGateway(t, stubCommerce(t, func(w http.ResponseWriter, r *http.Request) (int, string, any) {
		return commerce.CodeSuccess, "", orderResult(map[string]any{
			"payment_method": "VNPAY",
			"payment_url":    "https://pay.vnpay.vn/tx/abc",
		})
	}))

	w, envelope := doRequest(t, gw, http.MethodPost, "/api/v1/orders/O1/checkout", `{"payment_method":"VNPAY"}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := envelope["result"].(map[string]any)
	require.Equal(t, "https://pay.vnpay.vn/tx/abc", result["payment_url"])
	require.EqualValues(t, 6, result["redirect_in"])

	// The redirect is recoverable for the same session.
	w, envelope = doRequest(t, gw, http.MethodGet, "/api/v1/checkout/redirect", "")
	require.Equal(t, http.StatusOK, w.Code)
	state := envelope["result"].(map[string]any)
	require.Equal(t, "https://pay.vnpay.vn/tx/abc", state["payment_url"])
	require.Equal(t, "COUNTING", state["state"])
	require.Equal(t, true, state["auto_redirect"])

	// Cancel returns to idle; the URL stays for the manual affordance.
	w, envelope = doRequest(t, gw, http.MethodPost, "/api/v1/checkout/redirect/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, envelope["result"].(map[string]any)["cancelled"])

	w, envelope = doRequest(t, gw, http.MethodGet, "/api/v1/checkout/redirect", "")
	require.Equal(t, http.StatusOK, w.Code)
	state = envelope["result"].(map[string]any)
	require.Equal(t, "IDLE", state["state"])
	require.Equal(t, false, state["auto_redirect"])
	require.Equal(t, "https://pay.vnpay.vn/tx/abc", state["payment_url"])
}

func TestCheckoutCODReturnsNoRedirect(t *testing.T) {
	gw := newTestGateway(t, stubCommerce(t, func(w http.ResponseWriter, r *http.Request) (int, string, any) {
		return commerce.CodeSuccess, "", orderResult(map[string]any{"payment_method": "COD"})
	}))

	w, envelope := doRequest(t, gw, http.MethodPost, "/api/v1/orders/O1/checkout", `{"payment_method":"COD"}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := envelope["result"].(map[string]any)
	_, hasURL := result["payment_url"]
	require.False(t, hasURL)
}

func TestUpstreamOutageMapsToBadGateway(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	w, envelope := doRequest(t, gw, http.MethodGet, "/api/v1/orders/O1", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.NotEmpty(t, envelope["message"])
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	gw := newTestGateway(t, stubCommerce(t, func(w http.ResponseWriter, r *http.Request) (int, string, any) {
		t.Error("backend must not be called for an invalid payment method")
		return 0, "", nil
	}))

	w, _ := doRequest(t, gw, http.MethodPost, "/api/v1/orders/O1/checkout", `{"payment_method":"PAYPAL"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
