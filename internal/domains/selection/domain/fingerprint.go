package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// DefaultDedupeWindow is how long an identical save is treated as a repeat.
const DefaultDedupeWindow = 800 * time.Millisecond

// SaveFingerprint identifies an accepted save payload and when it happened.
type SaveFingerprint struct {
	Hash string    `json:"hash"`
	At   time.Time `json:"at"`
}

// Fingerprint hashes the sanitized save payload.
func Fingerprint(id shipdomain.InstanceID, carrier, customText string, at time.Time) SaveFingerprint {
	payload := strconv.FormatInt(int64(id), 10) + "|" + carrier + "|" + customText
	sum := sha256.Sum256([]byte(payload))
	return SaveFingerprint{Hash: hex.EncodeToString(sum[:]), At: at}
}
