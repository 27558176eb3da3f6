package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PhoneKey
	}{
		{"formatted with country code", "+1 (757) 123-4567", "7571234567"},
		{"already normalized", "7571234567", "7571234567"},
		{"eleven digits leading one", "17571234567", "7571234567"},
		{"eleven digits not leading one", "27571234567", "27571234567"},
		{"dots and dashes", "757.123-4567", "7571234567"},
		{"short number passes through", "12345", "12345"},
		{"long number passes through", "441632960123", "441632960123"},
		{"empty", "", ""},
		{"no digits", "not a phone", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"+1 (757) 123-4567", "7571234567", "", "1757123", "17571234567"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once.String()), "normalize must be idempotent for %q", in)
	}
}

func TestCacheEntry_Record(t *testing.T) {
	e := CacheEntry{ClientID: "id1", FirstName: "Amy", LastName: "Holton", Email: "a@x.com", Phone: "7571234567"}
	rec := e.Record(SourceCacheVerified)
	assert.Equal(t, "id1", rec.ID)
	assert.Equal(t, "Amy", rec.FirstName)
	assert.Equal(t, SourceCacheVerified, rec.Source)
}
