package manager

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

// memAdminRepo keeps the credential in memory so manager tests need no
// sqlite file.
type memAdminRepo struct {
	cred *model.AdminCredential
}

func (r *memAdminRepo) Load(defaultCode string) (*model.AdminCredential, error) {
	if r.cred == nil {
		cred := &model.AdminCredential{}
		if err := cred.SetCode(defaultCode); err != nil {
			return nil, err
		}
		r.cred = cred
	}
	return r.cred, nil
}

func (r *memAdminRepo) Save(cred *model.AdminCredential) error {
	r.cred = cred
	return nil
}

type testEnv struct {
	cache   *cache.Cache
	queue   *cache.Queue
	remote  *store.MemoryStore
	layout  cache.Layout
	prompt  *console.Prompter
	out     *bytes.Buffer
	repo    *memAdminRepo
	menu    *MenuManager
	orders  *OrderManager
	payment *PaymentManager
	online  *OnlineOrderManager
	admin   *AdminManager
	session *SessionController
}

const testAdminCode = "1234567890"

// newTestEnv seeds the remote tables, mirrors them into a cache and wires
// every manager against a scripted input stream.
func newTestEnv(t *testing.T, input string, qrisTimeout time.Duration) *testEnv {
	t.Helper()
	return newTestEnvReader(t, strings.NewReader(input), 5*time.Second, qrisTimeout)
}

func newTestEnvReader(t *testing.T, in io.Reader, inputTimeout, qrisTimeout time.Duration) *testEnv {
	t.Helper()

	mem := store.NewMemoryStore()
	mem.SeedTable(store.TableCoffee,
		[]string{store.ColCoffeeName, store.ColCoffeePrice, store.ColStock},
		[]string{"Espresso", "15000", "10"},
		[]string{"Latte", "20000", "5"},
	)
	mem.SeedTable(store.TableAdditives,
		[]string{store.ColAdditiveName, store.ColStock},
		[]string{model.AdditiveSugar, "50"},
		[]string{model.AdditiveCreamer, "50"},
		[]string{model.AdditiveMilk, "50"},
		[]string{model.AdditiveChocolate, "50"},
	)
	mem.SeedTable(store.TableReferences,
		[]string{store.ColRefID, store.ColRefAmount, store.ColRefMethod, store.ColRefTime, store.ColStatus},
	)
	mem.SeedTable(store.TableSales,
		[]string{store.ColCoffeeName, store.ColOrderTemp, "Composition", store.ColOrderQuantity, "Total Price", store.ColRefMethod},
	)
	mem.SeedTable(store.TableOnlineOrders,
		[]string{store.ColOrderCode, store.ColCoffeeName, store.ColOrderQuantity, store.ColOrderTemp,
			model.AdditiveSugar, model.AdditiveCreamer, model.AdditiveMilk, model.AdditiveChocolate, store.ColStatus},
	)

	c, layout, err := cache.Load(context.Background(), mem)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	prompt := console.NewPrompter(in, out, inputTimeout)
	log := zerolog.New(io.Discard)
	queue := cache.NewQueue()
	repo := &memAdminRepo{}

	menu := NewMenuManager(c)
	orders := NewOrderManager(c, menu, prompt)
	payment := NewPaymentManager(c, queue, prompt, mem, nil, log, qrisTimeout, "http://127.0.0.1:5000")
	online := NewOnlineOrderManager(c, queue, prompt, mem, layout, nil, log)
	admin := NewAdminManager(c, prompt, repo, mem, layout, nil, log, testAdminCode)
	session := NewSessionController(c, queue, prompt, mem, menu, orders, payment, online, admin, nil, log)

	return &testEnv{
		cache:   c,
		queue:   queue,
		remote:  mem,
		layout:  layout,
		prompt:  prompt,
		out:     out,
		repo:    repo,
		menu:    menu,
		orders:  orders,
		payment: payment,
		online:  online,
		admin:   admin,
		session: session,
	}
}

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
