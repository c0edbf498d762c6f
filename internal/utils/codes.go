package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// trackingAlphabet leaves out 0/O and 1/I/L so codes survive being read aloud.
const trackingAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	TrackingCodeLength = 12
	orderSuffixLength  = 6
)

// GenerateTrackingCode returns a random public tracking code.
func GenerateTrackingCode() (string, error) {
	return randomString(TrackingCodeLength)
}

// GenerateOrderNumber returns a human readable order number like ORD-20260115-K7M2QX.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := randomString(orderSuffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(trackingAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = trackingAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
