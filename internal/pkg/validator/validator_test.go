package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type windowInput struct {
	Day   int    `validate:"min=0,max=6"`
	Start string `validate:"required,hhmm"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(windowInput{Day: 0, Start: "09:00"}))
	assert.Nil(t, Validate(windowInput{Day: 6, Start: "23:59:00"}))

	errs := Validate(windowInput{Day: 7, Start: "24:00"})
	assert.Equal(t, map[string]string{"Day": "max", "Start": "hhmm"}, errs)

	errs = Validate(windowInput{Day: 1, Start: "9:00"})
	assert.Equal(t, "hhmm", errs["Start"])
}
