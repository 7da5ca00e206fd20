package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReference(t *testing.T) {
	ref := GenerateReference("PAY")

	parts := strings.Split(ref, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "PAY", parts[0])
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 8)

	_, err := time.Parse("20060102", parts[1])
	assert.NoError(t, err)
}

func TestGenerateReferralCodeFromUsername(t *testing.T) {
	code := GenerateReferralCode("Ivan Petrov")

	assert.True(t, strings.HasPrefix(code, "ivan-petrov-"), "got %s", code)
	assert.Len(t, code, len("ivan-petrov-")+4)
}

func TestGenerateReferralCodeEmptyUsername(t *testing.T) {
	code := GenerateReferralCode("")

	assert.True(t, strings.HasPrefix(code, "ref-"), "got %s", code)
}

func TestGenerateReferralCodeTruncatesLongNames(t *testing.T) {
	code := GenerateReferralCode(strings.Repeat("a", 50))

	assert.LessOrEqual(t, len(code), 20+1+4)
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, true, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), false, -time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}
