package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLocation(t *testing.T) {
	for raw, want := range map[string]string{
		"Irrua":   "Irrua",
		"irrua":   "Irrua",
		"EKPOMA":  "Ekpoma",
		" Uromi ": "Uromi",
	} {
		got, err := NormalizeLocation(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := NormalizeLocation("Lagos")
	assert.ErrorIs(t, err, ErrUnknownLocation)

	_, err = NormalizeLocation("")
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("Jollof Rice", "party size", "Mama Cass Kitchen", "irrua", "food", "", 1500, 10)
	require.NoError(t, err)
	assert.Equal(t, "Irrua", p.Location)
	assert.Equal(t, 1500.0, p.Price)
	assert.Equal(t, 10, p.Stock)

	_, err = NewProduct("", "", "Mama Cass Kitchen", "Irrua", "food", "", 1500, 10)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = NewProduct("Jollof Rice", "", "Mama Cass Kitchen", "Irrua", "food", "", -1, 10)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = NewProduct("Jollof Rice", "", "Mama Cass Kitchen", "Irrua", "food", "", 1500, -1)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = NewProduct("Jollof Rice", "", "Mama Cass Kitchen", "Benin", "food", "", 1500, 10)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}
