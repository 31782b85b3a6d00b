package checkout

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

const (
	transactionCodePrefix = "DMZ-"
	transactionCodeLength = 8
)

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewTransactionCode returns DMZ- followed by 8 base32 characters drawn from a random uuid.
func NewTransactionCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	encoded := codeEncoding.EncodeToString(id[:])
	return transactionCodePrefix + strings.ToUpper(encoded[:transactionCodeLength]), nil
}
