package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_StringFixedTwoDigits(t *testing.T) {
	assert.Equal(t, "75.50", MustParseMoney("75.5").String())
	assert.Equal(t, "50.00", MustParseMoney("50").String())
	assert.Equal(t, "123.45", MustParseMoney("0000000123.45").String())
	assert.Equal(t, "0.00", Zero().String())
}

func TestMoney_AddIsExact(t *testing.T) {
	total := Zero()
	for i := 0; i < 10; i++ {
		total = total.Add(MustParseMoney("0.10"))
	}
	assert.Equal(t, "1.00", total.String())
}

func TestMoney_RejectsNegativeAndGarbage(t *testing.T) {
	_, err := ParseMoney("-1.00")
	require.Error(t, err)

	_, err = ParseMoney("12a.00")
	require.Error(t, err)
}

func TestMoney_Scan(t *testing.T) {
	cases := []struct {
		name string
		src  interface{}
		want string
	}{
		{"postgres numeric", []byte("75.50"), "75.50"},
		{"sqlite real", float64(75.5), "75.50"},
		{"sqlite integer", int64(50), "50.00"},
		{"text", "1512.24", "1512.24"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m Money
			require.NoError(t, m.Scan(tc.src))
			assert.Equal(t, tc.want, m.String())
		})
	}
}
