package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLineFoldsEqualKeys(t *testing.T) {
	cart := MergeLine(nil, CartLine{CoffeeName: "Latte", UnitPrice: 20000, Quantity: 1, Temperature: TempHot, Composition: Composition{Sugar: 2}})
	cart = MergeLine(cart, CartLine{CoffeeName: "Latte", UnitPrice: 20000, Quantity: 2, Temperature: TempHot, Composition: Composition{Sugar: 2}})

	require.Len(t, cart, 1)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, 60000, CartTotal(cart))
}

func TestMergeLineKeepsDistinctKeysApart(t *testing.T) {
	base := CartLine{CoffeeName: "Latte", UnitPrice: 20000, Quantity: 1, Temperature: TempHot, Composition: Composition{Sugar: 2}}

	cold := base
	cold.Temperature = TempCold
	sweeter := base
	sweeter.Composition = Composition{Sugar: 3}

	cart := MergeLine(nil, base)
	cart = MergeLine(cart, cold)
	cart = MergeLine(cart, sweeter)

	assert.Len(t, cart, 3)
	assert.Equal(t, 60000, CartTotal(cart))
}

func TestParseTemperature(t *testing.T) {
	temp, ok := ParseTemperature("hot")
	require.True(t, ok)
	assert.Equal(t, TempHot, temp)

	_, ok = ParseTemperature("lukewarm")
	assert.False(t, ok)
}

func TestQuantityLabelRoundTrip(t *testing.T) {
	assert.Equal(t, "x3", QuantityLabel(3))
	assert.Equal(t, 3, ParseQuantityLabel("x3"))
	assert.Equal(t, 3, ParseQuantityLabel(" x3 "))
	assert.Equal(t, 0, ParseQuantityLabel("three"))
	assert.Equal(t, 0, ParseQuantityLabel(""))
}

func TestCompositionDescribe(t *testing.T) {
	comp := Composition{Sugar: 2, Milk: 1}
	assert.Equal(t, "Sugar (2), Creamer (0), Milk (1), Chocolate (0)", comp.Describe())
	assert.Equal(t, "Sugar: 2, Milk: 1", comp.DescribeNonZero())
	assert.Equal(t, "No additives", Composition{}.DescribeNonZero())
}

func TestCompositionAmount(t *testing.T) {
	comp := Composition{Sugar: 1, Creamer: 2, Milk: 3, Chocolate: 4}
	assert.Equal(t, 1, comp.Amount(AdditiveSugar))
	assert.Equal(t, 4, comp.Amount(AdditiveChocolate))
	assert.Equal(t, 0, comp.Amount("Cinnamon"))
}

func TestAdminCredentialCodeCheck(t *testing.T) {
	var cred AdminCredential
	require.NoError(t, cred.SetCode("1234567890"))

	assert.True(t, cred.Valid())
	assert.True(t, cred.CheckCode("1234567890"))
	assert.False(t, cred.CheckCode("0000000000"))

	cred.CodeHash = "not-a-hash"
	assert.False(t, cred.Valid())
}
