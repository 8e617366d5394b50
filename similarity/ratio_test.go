package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("Amazon", "Amazon"))
	assert.Equal(t, 1.0, Ratio("amazon", "AMAZON"))
}

func TestRatioDissimilar(t *testing.T) {
	assert.Less(t, Ratio("Amazon", "Google"), 0.5)
}

func TestRatioTypo(t *testing.T) {
	assert.GreaterOrEqual(t, Ratio("valve", "valvce"), 0.7)
	assert.GreaterOrEqual(t, Ratio("Amazon", "Amzon"), 0.7)
}

func TestRatioSymmetric(t *testing.T) {
	assert.Equal(t, Ratio("invoice", "invoices"), Ratio("invoices", "invoice"))
}

func TestRatioEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("Amazon", ""))
	assert.Equal(t, 0.0, Ratio("", "Amazon"))
	assert.Equal(t, 0.0, Ratio("", ""))
}

func TestRatioUnicode(t *testing.T) {
	// Multi-byte runes count as single edits.
	assert.Greater(t, Ratio("Müller GmbH", "Muller GmbH"), 0.85)
}
