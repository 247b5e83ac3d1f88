package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title string   `json:"title" validate:"required"`
	Price *float64 `json:"pricePerDay,omitempty" validate:"omitempty,gte=0"`
}

func TestValidate(t *testing.T) {
	neg := -1.0
	ok := 10.0

	assert.Nil(t, Validate(sample{Title: "x", Price: &ok}))
	assert.Nil(t, Validate(sample{Title: "x"}))
	assert.Equal(t, map[string]string{"title": "required", "pricePerDay": "gte"}, Validate(sample{Price: &neg}))
}
