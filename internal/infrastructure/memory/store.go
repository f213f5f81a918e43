// Package memory adaptadores en proceso para todos los puertos de repositorio.
// Reproduce las restricciones únicas y el bloqueo de fila de PostgreSQL; lo usan
// los tests y el modo STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// Store estado compartido. Las lecturas devuelven copias: nadie fuera del store
// comparte punteros con el estado confirmado.
type Store struct {
	mu sync.RWMutex

	businesses  map[string]*entity.Business
	memberships map[string]*entity.Membership // userID|businessID
	locations   map[string]*entity.Location
	products    map[string]*entity.Product
	users       map[string]*entity.User

	items    map[string]*entity.InventoryItem // id
	itemKeys map[string]string                // businessID|identifier -> id
	sales    []*entity.Sale
	audit    []*entity.AuditEntry
	ledger   []*entity.WalletLedgerEntry

	locks *rowLocks
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		businesses:  make(map[string]*entity.Business),
		memberships: make(map[string]*entity.Membership),
		locations:   make(map[string]*entity.Location),
		products:    make(map[string]*entity.Product),
		users:       make(map[string]*entity.User),
		items:       make(map[string]*entity.InventoryItem),
		itemKeys:    make(map[string]string),
		locks:       newRowLocks(),
	}
}

func key(a, b string) string { return a + "|" + b }

// ── Seed ─────────────────────────────────────────────────────────────────────

// AddBusiness inserta o reemplaza un negocio.
func (s *Store) AddBusiness(b *entity.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	s.businesses[b.ID] = &c
}

// AddMembership inserta o reemplaza la membresía (user, business).
func (s *Store) AddMembership(m *entity.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *m
	s.memberships[key(m.UserID, m.BusinessID)] = &c
}

// AddLocation inserta o reemplaza una ubicación.
func (s *Store) AddLocation(l *entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *l
	s.locations[l.ID] = &c
}

// AddProduct inserta o reemplaza un producto.
func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.products[p.ID] = &c
}

// AddUser inserta o reemplaza un usuario.
func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

// AddItem inserta un ítem respetando la restricción (business, identifier).
func (s *Store) AddItem(item *entity.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertItem(item)
}

func (s *Store) insertItem(item *entity.InventoryItem) error {
	k := key(item.BusinessID, item.Identifier)
	if _, ok := s.itemKeys[k]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	s.items[item.ID] = item.Clone()
	s.itemKeys[k] = item.ID
	return nil
}

// ── Inspección (tests) ──────────────────────────────────────────────────────

// Items todos los ítems confirmados.
func (s *Store) Items() []*entity.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sales todas las ventas confirmadas, en orden de inserción.
func (s *Store) Sales() []entity.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, *sale)
	}
	return out
}

// AuditEntries todas las entradas de auditoría, en orden de inserción.
func (s *Store) AuditEntries() []entity.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.AuditEntry, 0, len(s.audit))
	for _, e := range s.audit {
		out = append(out, *e)
	}
	return out
}

// LedgerEntries todos los movimientos de billetera.
func (s *Store) LedgerEntries() []entity.WalletLedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.WalletLedgerEntry, 0, len(s.ledger))
	for _, e := range s.ledger {
		out = append(out, *e)
	}
	return out
}

// ── Bloqueo de fila ─────────────────────────────────────────────────────────

// rowLocks un semáforo de capacidad 1 por clave (business|identifier).
// Se bloquea la clave aunque la fila aún no exista, lo que serializa recepciones concurrentes.
type rowLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newRowLocks() *rowLocks {
	return &rowLocks{slots: make(map[string]chan struct{})}
}

func (l *rowLocks) slot(k string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[k]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[k] = ch
	}
	return ch
}

// acquire toma la clave; con nowait falla con ErrTransientLock si está ocupada.
func (l *rowLocks) acquire(ctx context.Context, k string, nowait bool) error {
	ch := l.slot(k)
	if nowait {
		select {
		case ch <- struct{}{}:
			return nil
		default:
			return domain.ErrTransientLock
		}
	}
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *rowLocks) release(k string) {
	<-l.slot(k)
}
