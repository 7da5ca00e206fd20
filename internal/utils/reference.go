package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference generates a unique reference for payments and balance
// transactions, e.g. PAY_20260828_X7K2M9QA
func GenerateReference(prefix string) string {
	result := make([]byte, 8)
	for i := range result {
		result[i] = referenceCharset[rand.Intn(len(referenceCharset))]
	}

	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s_%s_%s", prefix, timestamp, string(result))
}
