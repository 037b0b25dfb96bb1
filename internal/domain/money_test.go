package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("250")
	require.NoError(t, err)
	assert.Equal(t, Money(25000), m)

	m, err = ParseMoney("99.5")
	require.NoError(t, err)
	assert.Equal(t, Money(9950), m)
}

func TestParseMoney_TooManyDecimals(t *testing.T) {
	_, err := ParseMoney("1.005")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestParseMoney_Garbage(t *testing.T) {
	_, err := ParseMoney("ten")
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestParseMoney_OutOfRange(t *testing.T) {
	for _, in := range []string{
		"184467440737095517.16",
		"92233720368547758.08",
		"1e30",
		"-1e30",
		"10000000.01",
	} {
		_, err := ParseMoney(in)
		assert.ErrorIs(t, err, ErrBadRequest, in)
	}
}

func TestParseMoney_AtLimit(t *testing.T) {
	m, err := ParseMoney("10000000")
	require.NoError(t, err)
	assert.Equal(t, MaxMoney, m)
}

func TestMoney_UnmarshalRejectsHugeAmount(t *testing.T) {
	var in struct {
		Amount Money `json:"amount"`
	}
	err := json.Unmarshal([]byte(`{"amount":184467440737095517.16}`), &in)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, Money(0), in.Amount)
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: Rupees(100)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":100.00}`, string(b))

	var in struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":12.34}`), &in))
	assert.Equal(t, Money(1234), in.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"7"}`), &in))
	assert.Equal(t, Money(700), in.Amount)
}
