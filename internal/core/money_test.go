package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{
		"12.34":   1234,
		"12,34":   1234,
		"0.5":     50,
		"12.345":  1235,
		"12.344":  1234,
		"-3.10":   -310,
		"  7 ":    700,
		"1e2":     10000,
		"":        0,
		"abc":     0,
		"1.2.3":   0,
		"R$ 10":   0,
		"1,234.5": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAmount(in).Cents, "ParseAmount(%q)", in)
	}
}

func TestMoneySplit(t *testing.T) {
	assert.Equal(t, int64(3333), Money{Cents: 10000}.Split(3).Cents)
	assert.Equal(t, int64(10000), Money{Cents: 10000}.Split(1).Cents)
	assert.Equal(t, int64(6667), Money{Cents: 20000}.Split(3).Cents)
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 3333})
	require.NoError(t, err)
	assert.Equal(t, "33.33", string(b))

	b, err = json.Marshal(Money{Cents: 100})
	require.NoError(t, err)
	assert.Equal(t, "1.00", string(b))

	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
		D Money `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 19.9, "b": "5,25", "c": "oops", "d": null}`), &payload))
	assert.Equal(t, int64(1990), payload.A.Cents)
	assert.Equal(t, int64(525), payload.B.Cents)
	assert.Equal(t, int64(0), payload.C.Cents)
	assert.Equal(t, int64(0), payload.D.Cents)
}

func TestMoneyFromFloat(t *testing.T) {
	assert.Equal(t, int64(1999), MoneyFromFloat(19.99).Cents)
	assert.Equal(t, int64(10), MoneyFromFloat(0.1).Cents)
}
