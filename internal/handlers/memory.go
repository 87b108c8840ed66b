package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cajabooks/internal/database"
	"cajabooks/internal/models"
)

// Default dropdown lists served when no backing store is configured.
var (
	defaultCashiers = []string{
		"yeseldis cordoba",
		"andres laureano",
	}
	defaultStores = []string{
		"CC Palatino",
		"CC Gran Estación",
		"CC Plaza Claro",
		"Santa Barbará",
		"Green Office",
		"Quinta Camacho",
	}
)

// MemoryStore holds closures and envelopes in process memory. It backs the
// closure endpoints when no database path is configured; everything in it
// is lost on restart.
type MemoryStore struct {
	mu        sync.Mutex
	closures  []models.Closure
	envelopes []models.Envelope
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddClosure stores the closure and derives its envelope record: the
// envelope value is counted cash minus the register base, and a negative
// value means no envelope was produced.
func (m *MemoryStore) AddClosure(in database.ClosureInput) (models.Closure, models.Envelope) {
	now := time.Now().UTC().Format(time.RFC3339)

	closure := models.Closure{
		ID:        uuid.NewString(),
		Date:      in.Date,
		Note:      in.Note,
		Cashier:   in.Cashier,
		Store:     in.Store,
		Channels:  in.Channels,
		Efectivo:  in.Efectivo,
		CreatedAt: now,
	}

	envelope := models.Envelope{
		ID:        uuid.NewString(),
		Date:      closure.Date,
		Cashier:   closure.Cashier,
		Store:     closure.Store,
		ClosureID: closure.ID,
		CreatedAt: now,
	}
	if v, ok := closure.EnvelopeValue(); ok {
		envelope.ValorSobre = &v
	} else {
		envelope.SinSobre = true
	}

	m.mu.Lock()
	m.closures = append(m.closures, closure)
	m.envelopes = append(m.envelopes, envelope)
	m.mu.Unlock()

	return closure, envelope
}

// Snapshot returns copies of the stored closures and envelopes.
func (m *MemoryStore) Snapshot() ([]models.Closure, []models.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	closures := make([]models.Closure, len(m.closures))
	copy(closures, m.closures)
	envelopes := make([]models.Envelope, len(m.envelopes))
	copy(envelopes, m.envelopes)
	return closures, envelopes
}
