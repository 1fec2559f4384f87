package utils

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
)

func ToNullString(str string) sql.NullString {
	if str == "" {
		return sql.NullString{
			String: str,
			Valid:  false,
		}
	}
	return sql.NullString{
		String: str,
		Valid:  true,
	}
}

// GenerateRandomString returns a random hex string of length n.
// Used for opaque activation and password reset tokens.
func GenerateRandomString(n int) string {
	b := make([]byte, (n+1)/2)
	rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
