package manager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/repository"
	"go-kopi-machine/internal/store"
	"go-kopi-machine/internal/ws"
)

// ErrShutdown signals that the administrator asked the machine to stop;
// the session loop returns it to main for a final flush and a clean exit.
var ErrShutdown = errors.New("machine shutdown requested")

const maxAuthAttempts = 5

// AdminManager gates restocking, code changes and shutdown behind the
// machine-local admin code. Restocks write through to the remote store
// immediately so the web shop sees fresh stock without waiting a sync
// cycle.
type AdminManager struct {
	cache  *cache.Cache
	prompt *console.Prompter
	repo   repository.AdminCodeRepository
	remote store.Store
	layout cache.Layout
	hub    *ws.Hub
	log    zerolog.Logger

	defaultCode string
}

func NewAdminManager(
	c *cache.Cache,
	prompt *console.Prompter,
	repo repository.AdminCodeRepository,
	remote store.Store,
	layout cache.Layout,
	hub *ws.Hub,
	log zerolog.Logger,
	defaultCode string,
) *AdminManager {
	return &AdminManager{
		cache:       c,
		prompt:      prompt,
		repo:        repo,
		remote:      remote,
		layout:      layout,
		hub:         hub,
		log:         log,
		defaultCode: defaultCode,
	}
}

// Run authenticates and serves the admin submenu. Returns ErrShutdown when
// the administrator stops the machine, nil when they leave the submenu and
// a console error on timeout or closed input.
func (a *AdminManager) Run(ctx context.Context) error {
	ok, err := a.authenticate()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return a.serveMenu(ctx)
}

// authenticate gives five attempts at the admin code. Non-numeric entries
// consume an attempt like a wrong code does.
func (a *AdminManager) authenticate() (bool, error) {
	cred, err := a.repo.Load(a.defaultCode)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load admin credential")
		a.prompt.Printf("Admin access is unavailable right now.\n")
		return false, nil
	}
	for attempt := 1; attempt <= maxAuthAttempts; attempt++ {
		code, err := a.prompt.Ask("Enter admin code: ")
		if err != nil {
			return false, err
		}
		if _, convErr := strconv.Atoi(code); convErr == nil && cred.CheckCode(code) {
			return true, nil
		}
		a.prompt.Printf("Wrong code, %d attempt(s) left.\n", maxAuthAttempts-attempt)
	}
	a.prompt.Printf("Too many failed attempts.\n")
	return false, nil
}

func (a *AdminManager) serveMenu(ctx context.Context) error {
	for {
		a.prompt.Printf("--------------- Admin Menu ------------------\n")
		a.prompt.Printf("1. Restock coffee\n2. Restock additives\n3. Change admin code\n4. Shut down machine\n5. Back\n")
		choice, err := a.prompt.Ask("Choose an option: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			if err := a.restockCoffee(ctx); err != nil {
				return err
			}
		case "2":
			if err := a.restockAdditives(ctx); err != nil {
				return err
			}
		case "3":
			if err := a.changeCode(); err != nil {
				return err
			}
		case "4":
			return ErrShutdown
		case "5", cancelKey:
			return nil
		default:
			a.prompt.Printf("Please choose 1-5.\n")
		}
	}
}

// restockCoffee lists every coffee, sold out ones included, and writes the
// new stock level through to the remote table.
func (a *AdminManager) restockCoffee(ctx context.Context) error {
	entries := a.cache.Menu()
	for i, coffee := range entries {
		a.prompt.Printf("%d. %s - Stock: %d\n", i+1, coffee.Name, coffee.Stock)
	}
	index, err := a.pickIndex("Which coffee to restock (x to cancel): ", len(entries))
	if err != nil {
		if errors.Is(err, errCanceled) {
			return nil
		}
		return err
	}
	name := entries[index-1].Name

	quantity, err := a.askQuantity(fmt.Sprintf("Cups to add to %s: ", name))
	if err != nil {
		if errors.Is(err, errCanceled) {
			return nil
		}
		return err
	}

	newStock, row, ok := a.cache.RestockCoffee(name, quantity)
	if !ok {
		return nil
	}
	if err := a.remote.WriteCell(ctx, store.TableCoffee, row, a.layout.CoffeeStockCol, strconv.Itoa(newStock)); err != nil {
		a.log.Warn().Err(err).Str("coffee", name).Msg("failed to write restock through, synchronizer will catch up")
	}
	a.prompt.Printf("%s restocked to %d.\n", name, newStock)
	a.hub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Message: "coffee restocked",
		Data:    map[string]interface{}{"coffee": name, "stock": newStock},
	})
	return nil
}

func (a *AdminManager) restockAdditives(ctx context.Context) error {
	levels := a.cache.Additives()
	for i, additive := range levels {
		a.prompt.Printf("%d. %s - %d portion(s)\n", i+1, additive.Name, additive.Level)
	}
	index, err := a.pickIndex("Which additive to restock (x to cancel): ", len(levels))
	if err != nil {
		if errors.Is(err, errCanceled) {
			return nil
		}
		return err
	}
	name := levels[index-1].Name

	quantity, err := a.askQuantity(fmt.Sprintf("Portions to add to %s: ", name))
	if err != nil {
		if errors.Is(err, errCanceled) {
			return nil
		}
		return err
	}

	newLevel, row, ok := a.cache.RestockAdditive(name, quantity)
	if !ok {
		return nil
	}
	if err := a.remote.WriteCell(ctx, store.TableAdditives, row, a.layout.AdditiveLevelCol, strconv.Itoa(newLevel)); err != nil {
		a.log.Warn().Err(err).Str("additive", name).Msg("failed to write restock through, synchronizer will catch up")
	}
	a.prompt.Printf("%s restocked to %d.\n", name, newLevel)
	a.hub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Message: "additive restocked",
		Data:    map[string]interface{}{"additive": name, "level": newLevel},
	})
	return nil
}

func (a *AdminManager) changeCode() error {
	cred, err := a.repo.Load(a.defaultCode)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load admin credential")
		return nil
	}
	for {
		code, err := a.prompt.Ask("New admin code (digits only, x to cancel): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(code, cancelKey) {
			return nil
		}
		if _, convErr := strconv.Atoi(code); convErr != nil || len(code) < 4 {
			a.prompt.Printf("The code must be at least 4 digits.\n")
			continue
		}
		confirm, err := a.prompt.Ask("Repeat the new code: ")
		if err != nil {
			return err
		}
		if confirm != code {
			a.prompt.Printf("Codes do not match.\n")
			continue
		}
		if err := cred.SetCode(code); err != nil {
			a.log.Error().Err(err).Msg("failed to hash admin code")
			return nil
		}
		if err := a.repo.Save(cred); err != nil {
			a.log.Error().Err(err).Msg("failed to save admin code")
			a.prompt.Printf("Could not save the new code.\n")
			return nil
		}
		a.prompt.Printf("Admin code updated.\n")
		return nil
	}
}

func (a *AdminManager) pickIndex(prompt string, count int) (int, error) {
	for {
		answer, err := a.prompt.Ask(prompt)
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(answer, cancelKey) {
			return 0, errCanceled
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > count {
			a.prompt.Printf("Please enter a number between 1 and %d.\n", count)
			continue
		}
		return n, nil
	}
}

func (a *AdminManager) askQuantity(prompt string) (int, error) {
	for {
		answer, err := a.prompt.Ask(prompt)
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(answer, cancelKey) {
			return 0, errCanceled
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n <= 0 {
			a.prompt.Printf("Please enter a positive number.\n")
			continue
		}
		return n, nil
	}
}
