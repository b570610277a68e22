package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// PaymentService talks to the external payment provider. Without a configured
// provider it runs in sandbox mode: checkout sessions are synthesized locally
// so the lifecycle stays exercisable in development. Implements
// PaymentGateway.
type PaymentService struct {
	apiBase    string
	apiKey     string
	successURL string
	cancelURL  string
	client     *http.Client
}

// NewPaymentService creates a new payment service
func NewPaymentService() *PaymentService {
	return &PaymentService{
		apiBase:    os.Getenv("PAYMENT_API_BASE"),
		apiKey:     os.Getenv("PAYMENT_API_KEY"),
		successURL: os.Getenv("PAYMENT_SUCCESS_URL"),
		cancelURL:  os.Getenv("PAYMENT_CANCEL_URL"),
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckoutSession opens a provider checkout session for the amount.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, amount float64, reference string) (*CheckoutSession, error) {
	if s.apiBase == "" {
		session := &CheckoutSession{
			SessionID: "cs_sandbox_" + uuid.New().String(),
			URL:       fmt.Sprintf("https://pay.sandbox.local/checkout/%s", reference),
		}
		log.Printf("💳 Sandbox checkout session %s for %s (%.2f)", session.SessionID, reference, amount)
		return session, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"amount":      amount,
		"currency":    "THB",
		"reference":   reference,
		"success_url": s.successURL,
		"cancel_url":  s.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v1/checkout/sessions", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, string(raw))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// WalletService credits mentor earnings through the payout provider's wallet
// API. Without configuration it only logs the credit. Implements
// WalletLedger.
type WalletService struct {
	apiBase string
	apiKey  string
	client  *http.Client
}

// NewWalletService creates a new wallet service
func NewWalletService() *WalletService {
	return &WalletService{
		apiBase: os.Getenv("WALLET_API_BASE"),
		apiKey:  os.Getenv("WALLET_API_KEY"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// AddEarnings credits the mentor's wallet. The mentorship id doubles as the
// idempotency key on the provider side.
func (s *WalletService) AddEarnings(ctx context.Context, mentorID uint, amount float64, mentorshipID uint) error {
	if s.apiBase == "" {
		log.Printf("💰 Sandbox wallet credit: mentor=%d amount=%.2f mentorship=%d", mentorID, amount, mentorshipID)
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"mentor_id":       mentorID,
		"amount":          amount,
		"idempotency_key": fmt.Sprintf("mentorship-%d", mentorshipID),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v1/wallets/credit", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wallet provider returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
