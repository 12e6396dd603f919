package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/sirupsen/logrus"
)

// FlutterwaveVerifier confirms a checkout transaction server-side before the
// plan ledger is mutated, instead of trusting the client-side widget callback
// alone.
type FlutterwaveVerifier struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewFlutterwaveVerifier creates a verifier with the given secret key.
func NewFlutterwaveVerifier(secretKey string) *FlutterwaveVerifier {
	return &FlutterwaveVerifier{
		secretKey:  secretKey,
		baseURL:    "https://api.flutterwave.com/v3",
		httpClient: &http.Client{},
	}
}

// Verify checks a transaction id against the provider: the charge must be
// successful, in the expected currency, and for at least the expected amount.
func (v *FlutterwaveVerifier) Verify(ctx context.Context, txID string, expectedAmount float64, currency string) error {
	url := fmt.Sprintf("%s/transactions/%s/verify", v.baseURL, txID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build verify request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.secretKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("Payment verify call failed")
		return fmt.Errorf("%w: payment provider unreachable", httputil.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: payment provider rejected credential", httputil.ErrUpstream)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read provider response", httputil.ErrUpstream)
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			Status   string  `json:"status"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: malformed provider response", httputil.ErrUpstream)
	}

	if payload.Status != "success" || payload.Data.Status != "successful" {
		return fmt.Errorf("%w: transaction not successful", httputil.ErrValidation)
	}
	if !strings.EqualFold(payload.Data.Currency, currency) {
		return fmt.Errorf("%w: transaction currency mismatch", httputil.ErrValidation)
	}
	if payload.Data.Amount < expectedAmount {
		return fmt.Errorf("%w: transaction amount below plan price", httputil.ErrValidation)
	}

	logrus.WithField("txID", txID).Info("Payment transaction verified")
	return nil
}
