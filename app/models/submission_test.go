package models

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		token, err := NewAccessToken()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, AccessTokenBytes)
		assert.NotContains(t, token, "=")

		_, dup := seen[token]
		assert.False(t, dup, "token issued twice")
		seen[token] = struct{}{}
	}
}

func TestEnumValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		check func(string) bool
		value string
		want  bool
	}{
		{"report type mvp", IsValidReportType, "mvp", true},
		{"report type gtm", IsValidReportType, "gtm", true},
		{"report type unknown", IsValidReportType, "pitch", false},
		{"report type case sensitive", IsValidReportType, "MVP", false},
		{"payment free", IsValidPaymentStatus, "free", true},
		{"payment paid_bundle", IsValidPaymentStatus, "paid_bundle", true},
		{"payment pending is a bundle state", IsValidPaymentStatus, "pending", false},
		{"lifecycle processing", IsValidSubmissionStatus, "processing", true},
		{"lifecycle available", IsValidSubmissionStatus, "available", true},
		{"lifecycle bogus", IsValidSubmissionStatus, "not-a-real-value", false},
		{"toggle completed", IsValidToggleStatus, "completed", true},
		{"toggle rejects processing", IsValidToggleStatus, "processing", false},
		{"toggle rejects empty", IsValidToggleStatus, "", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.check(tc.value))
		})
	}
}

func TestSubmissionHelpers(t *testing.T) {
	bundleID := "b-1"
	empty := ""

	assert.False(t, (&Submission{}).InBundle())
	assert.False(t, (&Submission{BundleID: &empty}).InBundle())
	assert.True(t, (&Submission{BundleID: &bundleID}).InBundle())

	assert.False(t, (&Submission{PaymentStatus: PaymentStatusFree}).IsPaid())
	assert.True(t, (&Submission{PaymentStatus: PaymentStatusPaidSingle}).IsPaid())
	assert.True(t, (&Submission{PaymentStatus: PaymentStatusPaidBundle}).IsPaid())

	assert.True(t, (&Bundle{PaymentStatus: BundlePaymentPaid}).IsPaid())
	assert.False(t, (&Bundle{PaymentStatus: BundlePaymentPending}).IsPaid())
}

func TestSubmissionJSONAccessToken(t *testing.T) {
	s := &Submission{ID: "s-1", AccessToken: "secret-token", PaymentStatus: PaymentStatusFree}

	plain, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "secret-token")

	owner, err := json.Marshal(s.WithToken())
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(owner, &decoded))
	assert.Equal(t, "secret-token", decoded["access_token"])
	assert.Equal(t, "s-1", decoded["id"])
	assert.Equal(t, PaymentStatusFree, decoded["payment_status"])
}
