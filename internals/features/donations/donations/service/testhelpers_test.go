package service

import (
	"crypto/sha512"
	"encoding/hex"
)

func midtransSignature(orderID, statusCode, gross, key string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + gross + key))
	return hex.EncodeToString(sum[:])
}
