package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	minIDLength  = 3
	maxIDLength  = 8
	nonceSize    = 16
	hexChunkSize = 4
)

// GenerateID derives a short base36 id from the title, creation time and a
// random nonce. The id starts at minIDLength characters and grows until
// taken reports it free.
func GenerateID(title string, createdAt time.Time, taken func(string) bool) string {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	h.Write(nonce)
	encoded := toBase36(hex.EncodeToString(h.Sum(nil)))

	for n := minIDLength; n <= maxIDLength && n <= len(encoded); n++ {
		if id := encoded[:n]; !taken(id) {
			return id
		}
	}
	return encoded[:maxIDLength]
}

func toBase36(hexStr string) string {
	var b strings.Builder
	for i := 0; i < len(hexStr); i += hexChunkSize {
		chunk := hexStr[i:min(i+hexChunkSize, len(hexStr))]
		v, _ := strconv.ParseUint(chunk, 16, 64)
		b.WriteString(strconv.FormatUint(v, 36))
	}
	return b.String()
}
