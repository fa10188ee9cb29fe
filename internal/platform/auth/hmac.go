package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSignatureMissing indicates the request carried no signature header.
	ErrSignatureMissing = errors.New("auth: signature missing")
	// ErrSignatureInvalid indicates the signature did not match the payload.
	ErrSignatureInvalid = errors.New("auth: signature invalid")
	// ErrSignatureExpired indicates the signed timestamp fell outside the allowed skew.
	ErrSignatureExpired = errors.New("auth: signature timestamp outside allowed skew")
)

// HMACValidator verifies provider-signed webhook payloads. The signature is
// hex(hmac-sha256(secret, timestamp + "." + body)); the timestamp header
// bounds replays to the configured clock skew.
type HMACValidator struct {
	secret          []byte
	signatureHeader string
	timestampHeader string
	clockSkew       time.Duration
	now             func() time.Time
}

// HMACValidatorConfig configures an HMACValidator.
type HMACValidatorConfig struct {
	Secret          string
	SignatureHeader string
	TimestampHeader string
	ClockSkew       time.Duration
	Now             func() time.Time
}

// NewHMACValidator builds a validator from the given configuration.
func NewHMACValidator(cfg HMACValidatorConfig) (*HMACValidator, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: hmac secret is required")
	}
	v := &HMACValidator{
		secret:          []byte(secret),
		signatureHeader: strings.TrimSpace(cfg.SignatureHeader),
		timestampHeader: strings.TrimSpace(cfg.TimestampHeader),
		clockSkew:       cfg.ClockSkew,
		now:             cfg.Now,
	}
	if v.signatureHeader == "" {
		v.signatureHeader = "X-Signature"
	}
	if v.timestampHeader == "" {
		v.timestampHeader = "X-Signature-Timestamp"
	}
	if v.clockSkew <= 0 {
		v.clockSkew = 5 * time.Minute
	}
	if v.now == nil {
		v.now = time.Now
	}
	return v, nil
}

// SignatureHeader returns the header name carrying the signature.
func (v *HMACValidator) SignatureHeader() string { return v.signatureHeader }

// TimestampHeader returns the header name carrying the signed timestamp.
func (v *HMACValidator) TimestampHeader() string { return v.timestampHeader }

// Verify checks the signature and timestamp headers against the raw body.
func (v *HMACValidator) Verify(signature, timestamp string, body []byte) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrSignatureMissing
	}

	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return ErrSignatureExpired
	}
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrSignatureExpired
	}
	signedAt := time.Unix(unix, 0)
	if delta := v.now().Sub(signedAt); delta > v.clockSkew || delta < -v.clockSkew {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return ErrSignatureInvalid
	}
	return nil
}

// Sign computes the signature for a timestamp and body. Used by tests and
// local tooling to produce valid callbacks.
func (v *HMACValidator) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
