package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassificationMapTypeOf(t *testing.T) {
	m := ClassificationMap{"101": AccountTypeClient, "301": AccountTypeRevenue}

	assert.Equal(t, AccountTypeClient, m.TypeOf("101"))
	assert.Equal(t, AccountTypeRevenue, m.TypeOf("301"))
	assert.Equal(t, AccountTypeOther, m.TypeOf("999"))
	assert.Equal(t, AccountTypeOther, m.TypeOf(""))
}

func TestClassificationMapClone(t *testing.T) {
	m := ClassificationMap{"101": AccountTypeClient}
	c := m.Clone()
	c["101"] = AccountTypeTreasury

	assert.Equal(t, AccountTypeClient, m["101"], "clone must not alias the original")
	assert.Nil(t, ClassificationMap(nil).Clone())
}

func TestAccountTypeValid(t *testing.T) {
	for _, at := range AccountTypes {
		assert.True(t, at.Valid(), "%s", at)
	}
	assert.False(t, AccountType("CLIENTE").Valid())
	assert.False(t, AccountType("").Valid())
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		day  time.Time
		want bool
	}{
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Contains(tt.day), "Contains(%s)", tt.day)
	}
}

func TestClientTag(t *testing.T) {
	assert.Equal(t, "", ClientTag{}.String())
	assert.Equal(t, "ACME", Tag("ACME").String())
	assert.NotEqual(t, ClientTag{}, Tag(""), "empty but set differs from unset")
	assert.Equal(t, Tag("ACME"), Tag("ACME"))
}
