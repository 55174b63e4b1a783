package gateway

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"

	"donate/internal/config"
)

var (
	// ErrMissingCredentials is returned when merchant credentials are not
	// configured. Nothing is ever hashed with an empty credential.
	ErrMissingCredentials = errors.New("gateway credentials not configured")

	// ErrSignatureMismatch is returned when an inbound notification fails
	// the authenticity check.
	ErrSignatureMismatch = errors.New("notification signature mismatch")
)

// Notification is the server-to-server payload PayHere posts to the notify
// endpoint. All fields arrive as strings on the wire.
type Notification struct {
	MerchantID string
	OrderID    string
	Amount     string
	Currency   string
	StatusCode string
	Signature  string
}

// Signer computes PayHere authorization digests. The scheme is mandated by
// the gateway: MD5 over the plain concatenation of the parameters followed
// by the upper-cased MD5 of the merchant secret, hex-encoded upper-case.
type Signer struct {
	merchantID     string
	merchantSecret string
	currency       string
}

// NewSigner creates a Signer from the injected gateway configuration.
func NewSigner(cfg config.GatewayConfig) *Signer {
	return &Signer{
		merchantID:     cfg.MerchantID,
		merchantSecret: cfg.MerchantSecret,
		currency:       cfg.Currency,
	}
}

// MerchantID returns the configured merchant identifier, which the client
// needs alongside the digest to initiate checkout.
func (s *Signer) MerchantID() string {
	return s.merchantID
}

// Currency returns the configured settlement currency.
func (s *Signer) Currency() string {
	return s.currency
}

// Sign computes the outbound checkout authorization digest for an order.
// An empty currency falls back to the configured settlement currency.
func (s *Signer) Sign(orderID, amount, currency string) (string, error) {
	if err := s.checkCredentials(); err != nil {
		return "", err
	}

	amt, err := NormalizeAmount(amount)
	if err != nil {
		return "", err
	}

	if currency == "" {
		currency = s.currency
	}

	return md5Upper(s.merchantID + orderID + amt + currency + md5Upper(s.merchantSecret)), nil
}

// SignNotification computes the inbound digest, which additionally covers
// the gateway status code. The merchant ID and currency come from the
// payload so that a tampered field breaks the comparison rather than being
// silently replaced by configured values.
func (s *Signer) SignNotification(merchantID, orderID, amount, currency, statusCode string) (string, error) {
	if err := s.checkCredentials(); err != nil {
		return "", err
	}

	// Re-normalize defensively: the gateway's amount string is usually
	// two-decimal already but must not be trusted as-is.
	amt, err := NormalizeAmount(amount)
	if err != nil {
		return "", err
	}

	return md5Upper(merchantID + orderID + amt + currency + statusCode + md5Upper(s.merchantSecret)), nil
}

// Verify checks a notification's attached signature against the recomputed
// digest. Returns ErrSignatureMismatch when they differ.
func (s *Signer) Verify(n Notification) error {
	expected, err := s.SignNotification(n.MerchantID, n.OrderID, n.Amount, n.Currency, n.StatusCode)
	if err != nil {
		return err
	}

	if expected != strings.ToUpper(n.Signature) {
		return ErrSignatureMismatch
	}

	return nil
}

func (s *Signer) checkCredentials() error {
	if s.merchantID == "" || s.merchantSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

func md5Upper(input string) string {
	sum := md5.Sum([]byte(input))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
