package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPLength is the number of digits in a one-time passcode
const OTPLength = 6

var otpUpperBound = big.NewInt(1_000_000)

// GenerateOTP returns a uniformly random zero-padded 6 digit code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpUpperBound)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}
