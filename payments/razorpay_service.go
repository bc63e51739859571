package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/saverana/donation-backend/configs"
)

// ErrGatewayUnavailable marks order-creation failures the caller may retry.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt"`
	Notes          map[string]string `json:"notes,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
}

var gatewayClient = &http.Client{Timeout: 15 * time.Second}

func apiBase() string {
	if base := config.Config("RAZORPAY_API_BASE_URL"); base != "" {
		return base
	}
	return "https://api.razorpay.com"
}

// CreateRazorpayOrder opens an order with the gateway. Amount is in paise and
// is validated by the caller before this makes a network call.
func CreateRazorpayOrder(amountPaise int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	payload := createOrderRequest{
		Amount:         amountPaise,
		Currency:       currency,
		Receipt:        receipt,
		Notes:          notes,
		PaymentCapture: 1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/orders", apiBase()), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(config.Config("RAZORPAY_KEY_ID"), config.Config("RAZORPAY_KEY_SECRET"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := gatewayClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: order creation returned %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var order RazorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: malformed order response: %v", ErrGatewayUnavailable, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order response missing id", ErrGatewayUnavailable)
	}

	return &order, nil
}
