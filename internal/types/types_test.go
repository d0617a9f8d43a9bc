package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceipt_TotalQuantity(t *testing.T) {
	r := Receipt{
		Items: []LineItem{
			{Quantity: 3024},
			{Quantity: 6000},
		},
	}
	assert.Equal(t, 9024, r.TotalQuantity())

	assert.Zero(t, (&Receipt{}).TotalQuantity())
}

func TestReceipt_Party(t *testing.T) {
	r := Receipt{
		Parties: []Party{
			{Role: "WH", ID: "D7"},
			{Role: "ST", ID: "9083514477"},
			{Role: "WH", ID: "D8"},
		},
	}

	p, ok := r.Party("WH")
	assert.True(t, ok)
	assert.Equal(t, "D7", p.ID, "first matching role wins")

	_, ok = r.Party("SF")
	assert.False(t, ok)
}

func TestLineItem_Attribute(t *testing.T) {
	li := LineItem{
		Attributes: []Reference{
			{Qualifier: "CL", Value: "GREY"},
			{Qualifier: "SZ", Value: "PPK"},
		},
	}

	v, ok := li.Attribute("SZ")
	assert.True(t, ok)
	assert.Equal(t, "PPK", v)

	_, ok = li.Attribute("WT")
	assert.False(t, ok)
}

func TestLineItem_QuantityString(t *testing.T) {
	assert.Equal(t, "3024", (&LineItem{Quantity: 3024}).QuantityString())
	assert.Equal(t, "0", (&LineItem{}).QuantityString())
}
