package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string   `json:"client_name" validate:"required"`
	Phone string   `json:"phone" validate:"required,phone"`
	Type  string   `json:"shoot_type" validate:"required,shoot_type"`
	Items []item   `json:"items" validate:"dive"`
	GST   *float64 `json:"gst" validate:"omitempty,gte=0,lte=100"`
}

type item struct {
	Cost float64 `json:"cost" validate:"gte=0"`
}

func TestValidate_UsesJSONPaths(t *testing.T) {
	gst := 120.0
	errs := Validate(sample{
		Phone: "abc",
		Type:  "karaoke",
		Items: []item{{Cost: 10}, {Cost: -1}},
		GST:   &gst,
	})

	assert.Equal(t, "required", errs["client_name"])
	assert.Equal(t, "phone", errs["phone"])
	assert.Equal(t, "shoot_type", errs["shoot_type"])
	assert.Equal(t, "gte", errs["items[1].cost"])
	assert.Equal(t, "lte", errs["gst"])
	assert.NotContains(t, errs, "items[0].cost")
}

func TestValidate_Valid(t *testing.T) {
	errs := Validate(sample{Name: "Asha", Phone: "+91 98765 43210", Type: "wedding"})
	assert.Nil(t, errs)
}

func TestValidate_PhoneTag(t *testing.T) {
	type contact struct {
		Phone string `json:"phone" validate:"phone"`
	}
	assert.Nil(t, Validate(contact{Phone: "(022) 555-0101"}))
	assert.Equal(t, "phone", Validate(contact{Phone: "12"})["phone"])
	assert.Equal(t, "phone", Validate(contact{Phone: "call me"})["phone"])
}
