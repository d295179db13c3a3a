package session

import (
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Entry is everything one scope shares: the cart, its change signal and the
// single-flight checkout coordinator.
type Entry struct {
	Repo        cart.Repository
	Bus         *events.Bus
	Coordinator *checkout.Coordinator

	lastSeen time.Time
}

// HubConfig carries the collaborators shared by every scope.
type HubConfig struct {
	Store           storage.Store
	Orders          checkout.OrderCreator
	CartKey         string
	PaymentMethod   enums.PaymentMethod
	SubmitTimeout   time.Duration
	CartMetrics     *metrics.CartMetrics
	CheckoutMetrics *metrics.CheckoutMetrics
	Logger          *logger.Logger
}

// Hub assembles scope entries lazily and drops idle ones.
type Hub struct {
	cfg     HubConfig
	mu      sync.Mutex
	entries map[string]*Entry
	now     func() time.Time
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Hub{
		cfg:     cfg,
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Get returns the entry for scope, creating it on first use.
func (h *Hub) Get(scope Scope) (*Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.entries[scope.Key]; ok {
		entry.lastSeen = h.now()
		return entry, nil
	}

	bus := events.NewBus(h.cfg.Logger)
	repo := cart.WithEvents(cart.NewRepository(h.cfg.Store, scope.Key,
		cart.WithKey(h.cfg.CartKey),
		cart.WithLogger(h.cfg.Logger),
		cart.WithMetrics(h.cfg.CartMetrics),
	), bus)
	coordinator, err := checkout.NewCoordinator(repo, h.cfg.Orders,
		checkout.WithLogger(h.cfg.Logger),
		checkout.WithMetrics(h.cfg.CheckoutMetrics),
		checkout.WithPaymentMethod(h.cfg.PaymentMethod),
		checkout.WithSubmitTimeout(h.cfg.SubmitTimeout),
	)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Repo: repo, Bus: bus, Coordinator: coordinator, lastSeen: h.now()}
	h.entries[scope.Key] = entry
	return entry, nil
}

// Sweep drops entries unused for longer than idle that have no mounted views and
// no submission in flight. It returns how many were dropped.
func (h *Hub) Sweep(idle time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-idle)
	dropped := 0
	for key, entry := range h.entries {
		if entry.lastSeen.After(cutoff) {
			continue
		}
		if entry.Bus.Subscribers() > 0 || entry.Coordinator.InFlight() {
			continue
		}
		delete(h.entries, key)
		dropped++
	}
	return dropped
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
