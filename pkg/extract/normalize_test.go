package extract_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/pkg/extract"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Locale formats that must agree.
		{name: "US grouping", input: "1,234.56", want: "1234.56"},
		{name: "European grouping", input: "1.234,56", want: "1234.56"},
		{name: "Arabic decimal mark", input: "1234٫56", want: "1234.56"},
		{name: "space grouping", input: "1 234.56", want: "1234.56"},
		{name: "bare integer", input: "1234", want: "1234"},

		// Digit mapping.
		{name: "Arabic-Indic digits", input: "١٢٣٤٫٥٦", want: "1234.56"},
		{name: "Extended Arabic-Indic digits", input: "۱۲۳۴", want: "1234"},
		{name: "Arabic digits with grouping", input: "١,٢٣٤٫٥", want: "1234.5"},

		// Comma-only disambiguation.
		{name: "comma followed by two digits is decimal", input: "12,34", want: "12.34"},
		{name: "comma followed by one digit is decimal", input: "12,5", want: "12.5"},
		{name: "comma followed by three digits is thousands", input: "1,234", want: "1234"},
		{name: "several commas are thousands", input: "1,234,567", want: "1234567"},

		// Dot-only disambiguation.
		{name: "single dot is decimal", input: "99.9", want: "99.9"},
		{name: "several dots are thousands", input: "1.234.567", want: "1234567"},
		{name: "several dots with short tail", input: "1.234.56", want: "1234.56"},

		// Noise.
		{name: "currency symbol", input: "$ 99.99", want: "99.99"},
		{name: "trailing currency with dot", input: "1,299.00 ر.س", want: "1299"},
		{name: "non-breaking space grouping", input: "1 234,50", want: "1234.5"},
		{name: "leading decimal", input: ".99", want: "0.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := extract.Normalize(tt.input)
			require.NoError(t, err)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(got), "got %s, want %s", got, want)
		})
	}
}

func TestNormalize_LocaleFormatsAgree(t *testing.T) {
	t.Parallel()

	want := decimal.RequireFromString("1234.56")
	for _, in := range []string{"1,234.56", "1.234,56", "1234٫56", "1 234.56"} {
		got, err := extract.Normalize(in)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%q gave %s", in, got)
	}
}

func TestNormalize_NoDigits(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "abc", "ر.س", ".,"} {
		_, err := extract.Normalize(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, extract.ErrNoDigits)
	}
}
