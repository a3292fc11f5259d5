package bookings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestToCents : les prix à décimales ne doivent pas perdre un centime à la
// troncature flottante (497.99*100 vaut 49798.999... en float64).
func TestToCents(t *testing.T) {
	cas := map[float64]int64{
		497:    49700,
		497.99: 49799,
		0.1:    10,
		19.95:  1995,
		1234.5: 123450,
	}

	for prix, attendu := range cas {
		require.Equal(t, attendu, toCents(prix), "prix %v", prix)
	}
}
