package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "улица победы", Fold("  Улица   ПОБЕДЫ "))
	assert.Equal(t, "елка", Fold("Ёлка"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("", ""))
	assert.Equal(t, 100, Ratio("парк", "парк"))
	assert.Equal(t, 57, Ratio("kitten", "sitting"))
	assert.Equal(t, 88, Ratio("бальница", "больница"))
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100, TokenSetRatio("рынок центральный", "центральный рынок"))
	assert.Equal(t, 100, TokenSetRatio("вокзал", "железнодорожный вокзал"))
	assert.Less(t, TokenSetRatio("парк", "железнодорожный вокзал"), TokenSetCutoff)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("побед", "улица победы"))
	assert.Equal(t, 100, PartialRatio("улица победы", "побед"))
	assert.Equal(t, 88, PartialRatio("бальница", "центральная районная больница"))
	assert.Equal(t, 0, PartialRatio("", "парк"))
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name      string
		query     string
		candidate string
		want      func(t *testing.T, score int)
	}{
		{"Typo", "бальница", "Центральная районная больница", func(t *testing.T, s int) { assert.Equal(t, 88, s) }},
		{"WordOrder", "победы улица", "Улица Победы", func(t *testing.T, s int) { assert.Equal(t, 100, s) }},
		{"Prefix", "побед", "улица Победы", func(t *testing.T, s int) { assert.Equal(t, 100, s) }},
		{"CaseInsensitive", "ВОКЗАЛ", "Железнодорожный вокзал", func(t *testing.T, s int) { assert.Equal(t, 100, s) }},
		{"Unrelated", "вокзал", "Парк", func(t *testing.T, s int) { assert.Zero(t, s) }},
		{"BlankQuery", "   ", "Парк", func(t *testing.T, s int) { assert.Zero(t, s) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.want(t, Score(tc.query, tc.candidate))
		})
	}
}
