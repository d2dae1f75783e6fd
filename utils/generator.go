package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"unicode"

	"github.com/refferq/referral_api/models"
	"gorm.io/gorm"
)

const (
	codePrefixLength = 6
	codeSuffixLength = 4
	maxCodeAttempts  = 20
	letterBytes      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ReferralCodePrefix keeps up to six ASCII letters of the name, upper-cased.
func ReferralCodePrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() == codePrefixLength {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "REF"
	}
	return b.String()
}

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(letterBytes)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = letterBytes[idx.Int64()]
	}
	return string(b), nil
}

// GenerateUniqueReferralCode builds a NAME-XXXX code not yet used by any affiliate.
func GenerateUniqueReferralCode(tx *gorm.DB, name string) (string, error) {
	prefix := ReferralCodePrefix(name)

	for i := 0; i < maxCodeAttempts; i++ {
		suffix, err := randomSuffix(codeSuffixLength)
		if err != nil {
			return "", err
		}
		code := prefix + "-" + suffix

		var count int64
		if err := tx.Model(&models.Affiliate{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not find a free referral code")
}

// GenerateKey returns prefix followed by 32 random bytes in hex.
func GenerateKey(prefix string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(b), nil
}
