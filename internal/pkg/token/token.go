package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Fingerprint returns a deterministic SHA-256 fingerprint of a bearer token.
// Sessions are stored under the fingerprint so raw tokens never reach the database.
func Fingerprint(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// OTPHash fingerprints an OTP together with its target and record id, so equal
// codes issued to different people or generations never share a hash.
func OTPHash(target, otpID, code string) string {
	return Fingerprint(target + ":" + otpID + ":" + code)
}

// NewOTP returns a uniformly random 6-digit numeric code in [100000, 999999].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}

// NewReferralCode returns an n-character uppercase code. Ambiguous characters
// (0/O, 1/I) are left out so codes survive being read aloud.
func NewReferralCode(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}
