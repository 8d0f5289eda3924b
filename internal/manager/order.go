package manager

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/model"
)

// cancelKey aborts the current order from any prompt.
const cancelKey = "x"

const (
	maxAdditivePortions = 5
	maxOrderQuantity    = 99
)

var errCanceled = errors.New("order canceled")

// OrderManager runs the interactive order loop against the cache.
type OrderManager struct {
	cache  *cache.Cache
	menu   *MenuManager
	prompt *console.Prompter
}

func NewOrderManager(c *cache.Cache, menu *MenuManager, prompt *console.Prompter) *OrderManager {
	return &OrderManager{cache: c, menu: menu, prompt: prompt}
}

// BuildCart collects order lines until the customer stops or cancels.
// Cancellation returns an empty cart with a nil error; a non-nil error is
// a console failure (timeout or closed input). Every line in a returned
// cart holds a stock reservation, which the caller must release if
// checkout does not complete.
func (o *OrderManager) BuildCart() ([]model.CartLine, error) {
	var cart []model.CartLine
	for {
		line, err := o.buildLine()
		if err != nil {
			o.releaseAll(cart)
			if errors.Is(err, errCanceled) {
				o.prompt.Printf("Order canceled.\n")
				return nil, nil
			}
			return nil, err
		}
		cart = model.MergeLine(cart, line)

		more, err := o.askYesNo("Order another coffee? (y/n): ")
		if err != nil {
			o.releaseAll(cart)
			if errors.Is(err, errCanceled) {
				o.prompt.Printf("Order canceled.\n")
				return nil, nil
			}
			return nil, err
		}
		if !more {
			return cart, nil
		}
	}
}

// buildLine walks one coffee through selection, temperature, composition
// and quantity, then reserves stock for it. A shortfall reprompts from the
// menu instead of failing the order.
func (o *OrderManager) buildLine() (model.CartLine, error) {
	for {
		o.prompt.Printf("%s\n", o.menu.Render())
		coffee, err := o.selectCoffee()
		if err != nil {
			return model.CartLine{}, err
		}

		temp, err := o.selectTemperature(coffee.Name)
		if err != nil {
			return model.CartLine{}, err
		}

		comp, err := o.selectComposition()
		if err != nil {
			return model.CartLine{}, err
		}

		quantity, err := o.askInt(fmt.Sprintf("How many cups of %s? ", coffee.Name), 1, maxOrderQuantity)
		if err != nil {
			return model.CartLine{}, err
		}

		if err := o.cache.ReserveLine(coffee.Name, comp, quantity); err != nil {
			o.prompt.Printf("Sorry, %v. Please adjust your order.\n", err)
			continue
		}
		return model.CartLine{
			CoffeeName:  coffee.Name,
			UnitPrice:   coffee.Price,
			Quantity:    quantity,
			Temperature: temp,
			Composition: comp,
		}, nil
	}
}

func (o *OrderManager) selectCoffee() (model.CoffeeEntry, error) {
	for {
		answer, err := o.prompt.Ask("Choose a coffee by number (x to cancel): ")
		if err != nil {
			return model.CoffeeEntry{}, err
		}
		if strings.EqualFold(answer, cancelKey) {
			return model.CoffeeEntry{}, errCanceled
		}
		number, err := strconv.Atoi(answer)
		if err != nil {
			o.prompt.Printf("Please enter a menu number.\n")
			continue
		}
		coffee, ok := o.cache.CoffeeByNumber(number)
		if !ok {
			o.prompt.Printf("No coffee with number %d on the menu.\n", number)
			continue
		}
		return coffee, nil
	}
}

func (o *OrderManager) selectTemperature(coffeeName string) (model.Temperature, error) {
	for {
		answer, err := o.prompt.Ask(fmt.Sprintf("Serve %s 1. Hot or 2. Cold? ", coffeeName))
		if err != nil {
			return "", err
		}
		if strings.EqualFold(answer, cancelKey) {
			return "", errCanceled
		}
		switch answer {
		case "1":
			return model.TempHot, nil
		case "2":
			return model.TempCold, nil
		}
		if temp, ok := model.ParseTemperature(answer); ok {
			return temp, nil
		}
		o.prompt.Printf("Please answer 1 for Hot or 2 for Cold.\n")
	}
}

func (o *OrderManager) selectComposition() (model.Composition, error) {
	var comp model.Composition
	for _, additive := range model.AdditiveNames {
		level := o.cache.AdditiveLevel(additive)
		amount, err := o.askInt(
			fmt.Sprintf("%s portions (0-%d, %d left): ", additive, maxAdditivePortions, level),
			0, maxAdditivePortions,
		)
		if err != nil {
			return model.Composition{}, err
		}
		switch additive {
		case model.AdditiveSugar:
			comp.Sugar = amount
		case model.AdditiveCreamer:
			comp.Creamer = amount
		case model.AdditiveMilk:
			comp.Milk = amount
		case model.AdditiveChocolate:
			comp.Chocolate = amount
		}
	}
	return comp, nil
}

// askInt prompts until the customer enters an integer in [min, max], or
// cancels, or the console fails.
func (o *OrderManager) askInt(prompt string, min, max int) (int, error) {
	for {
		answer, err := o.prompt.Ask(prompt)
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(answer, cancelKey) {
			return 0, errCanceled
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < min || n > max {
			o.prompt.Printf("Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return n, nil
	}
}

func (o *OrderManager) askYesNo(prompt string) (bool, error) {
	for {
		answer, err := o.prompt.Ask(prompt)
		if err != nil {
			return false, err
		}
		if strings.EqualFold(answer, cancelKey) {
			return false, errCanceled
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		o.prompt.Printf("Please answer y or n.\n")
	}
}

// Summarize prints the cart and returns its total.
func (o *OrderManager) Summarize(cart []model.CartLine) int {
	o.prompt.Printf("---------------- Your Order -----------------\n")
	for _, line := range cart {
		o.prompt.Printf("%dx %s (%s) - %s - Rp%d\n",
			line.Quantity, line.CoffeeName, line.Temperature, line.Composition.Describe(), line.LinePrice())
	}
	total := model.CartTotal(cart)
	o.prompt.Printf("Total: Rp%d\n", total)
	o.prompt.Printf("---------------------------------------------\n")
	return total
}

func (o *OrderManager) releaseAll(cart []model.CartLine) {
	for _, line := range cart {
		o.cache.ReleaseLine(line.CoffeeName, line.Composition, line.Quantity)
	}
}
