package reference_test

import (
	"testing"

	"fjacquet/payrecon/cmd/reference"
	"fjacquet/payrecon/cmd/root"
	ref "fjacquet/payrecon/internal/reference"

	"github.com/stretchr/testify/assert"
)

func TestReferenceCommand_Metadata(t *testing.T) {
	assert.Equal(t, "reference", reference.Cmd.Use)
	assert.Contains(t, reference.Cmd.Long, "Example")
	for _, c := range reference.Cmd.Commands() {
		assert.Equal(t, "true", c.Annotations[root.NoStore], c.Name())
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		valid     bool
		style     ref.Style
		formatted string
	}{
		{"qr reference", "210000000003139471430009017", true, ref.StyleQRR, "21 00000 00003 13947 14300 09017"},
		{"creditor reference with spaces", "RF18 5390 0754 7034", true, ref.StyleCreditor, "RF18 5390 0754 7034"},
		{"qr reference bad check digit", "210000000003139471430009016", false, ref.StyleQRR, ""},
		{"creditor reference bad check digits", "RF19539007547034", false, ref.StyleCreditor, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reference.Check(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.style, got.Style)
			assert.Equal(t, tt.formatted, got.Formatted)
			if tt.valid {
				assert.Empty(t, got.Error)
			} else {
				assert.NotEmpty(t, got.Error)
			}
		})
	}
}
