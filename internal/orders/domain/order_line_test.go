package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shareddomain "legacyorders/internal/shared/domain"
)

// aliceLine userId=1, name=Alice, orderId=1002, productId=2003, value=123.45, date=20210101
const aliceLine = "0000000001" +
	"Alice                                        " +
	"0000001002" +
	"0000002003" +
	"000000123.45" +
	"20210101"

func TestParseLine_Fields(t *testing.T) {
	require.Len(t, aliceLine, LineWidth)

	line, err := ParseLine(aliceLine)
	require.NoError(t, err)

	assert.Equal(t, int64(1), line.UserID)
	assert.Equal(t, "Alice", line.UserName)
	assert.Equal(t, int64(1002), line.OrderID)
	assert.Equal(t, int64(2003), line.ProductID)
	assert.Equal(t, "123.45", line.ProductValue.String())
	assert.Equal(t, "2021-01-01", line.PurchaseDate)
}

func TestParseLine_RealisticLine(t *testing.T) {
	raw := "0000000070                              Palmer Prosacco00000007530000000003     1836.7420210308"

	line, err := ParseLine(raw)
	require.NoError(t, err)

	assert.Equal(t, int64(70), line.UserID)
	assert.Equal(t, "Palmer Prosacco", line.UserName)
	assert.Equal(t, int64(753), line.OrderID)
	assert.Equal(t, int64(3), line.ProductID)
	assert.Equal(t, "1836.74", line.ProductValue.String())
	assert.Equal(t, "2021-03-08", line.PurchaseDate)
}

func TestParseLine_CountsCharactersNotBytes(t *testing.T) {
	raw := strings.Replace(aliceLine, "Alice", "Álíçé", 1)
	require.Equal(t, LineWidth, len([]rune(raw)))

	line, err := ParseLine(raw)
	require.NoError(t, err)
	assert.Equal(t, "Álíçé", line.UserName)
	assert.Equal(t, int64(1002), line.OrderID)
}

func TestParseLine_Malformed(t *testing.T) {
	cases := map[string]string{
		"too short":     aliceLine[:90],
		"too long":      aliceLine + "0",
		"bad user id":   "00000000x1" + aliceLine[10:],
		"bad order id":  aliceLine[:55] + "abcdefghij" + aliceLine[65:],
		"bad value":     aliceLine[:75] + "0000001x3.45" + aliceLine[87:],
		"bad date":      aliceLine[:87] + "20211301",
		"negative id":   "-000000001" + aliceLine[10:],
		"non date text": aliceLine[:87] + "2021AB01",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLine(raw)
			assert.Error(t, err)
		})
	}
}

func TestFormatLine_RoundTrip(t *testing.T) {
	line := OrderLine{
		UserID:       1,
		UserName:     "Alice",
		OrderID:      1002,
		ProductID:    2003,
		ProductValue: shareddomain.MustParseMoney("123.45"),
		PurchaseDate: "2021-01-01",
	}

	raw, err := FormatLine(line)
	require.NoError(t, err)
	assert.Equal(t, aliceLine, raw)

	back, err := ParseLine(raw)
	require.NoError(t, err)
	assert.Equal(t, line.UserName, back.UserName)
	assert.Equal(t, line.ProductValue.String(), back.ProductValue.String())
}

func TestFormatLine_RejectsOverflow(t *testing.T) {
	_, err := FormatLine(OrderLine{
		UserID:       12345678901,
		ProductValue: shareddomain.Zero(),
		PurchaseDate: "2021-01-01",
	})
	assert.Error(t, err)
}

func TestLineError_Is(t *testing.T) {
	_, cause := ParseLine("short")
	err := error(&LineError{Line: 3, Err: cause})

	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.Contains(t, err.Error(), "line 3")
}
