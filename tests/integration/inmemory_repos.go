package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Email == m.Email {
			return fmt.Errorf("email already exists")
		}
	}
	r.merchants[m.ID] = m
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (r *inMemoryMerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, nil
}

// --- In-Memory Card Repo ---

// inMemoryCardRepo mimics the conditional debit/credit semantics of the
// postgres implementation: the guard check and the mutation happen under one
// lock, and losing the guard registers no change.
type inMemoryCardRepo struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card
}

func newInMemoryCardRepo() *inMemoryCardRepo {
	return &inMemoryCardRepo{cards: make(map[uuid.UUID]*domain.Card)}
}

func (r *inMemoryCardRepo) Create(ctx context.Context, c *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cards {
		if existing.CardUID == c.CardUID {
			return fmt.Errorf("card uid already exists")
		}
	}
	clone := *c
	r.cards[c.ID] = &clone
	return nil
}

func (r *inMemoryCardRepo) GetByUID(ctx context.Context, cardUID string) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.CardUID == cardUID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCardRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Card
	for _, c := range r.cards {
		if c.MerchantID != nil && *c.MerchantID == merchantID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CardUID < result[j].CardUID })
	return result, nil
}

func (r *inMemoryCardRepo) Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || !c.Active || c.Balance < amount {
		return 0, false, nil
	}
	c.Balance -= amount
	registerUndo(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		c.Balance += amount
	})
	return c.Balance, true, nil
}

func (r *inMemoryCardRepo) Credit(ctx context.Context, id uuid.UUID, amount int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || !c.Active {
		return 0, false, nil
	}
	c.Balance += amount
	return c.Balance, true, nil
}

func (r *inMemoryCardRepo) SetActive(ctx context.Context, cardUID string, active bool) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.CardUID == cardUID {
			c.Active = active
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

// --- In-Memory Product Repo ---

type inMemoryProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *inMemoryProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *inMemoryProductRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Product
	for _, p := range r.products {
		if p.MerchantID == merchantID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *inMemoryProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return fmt.Errorf("product not found")
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *inMemoryProductRepo) Delete(ctx context.Context, id uuid.UUID, merchantID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.MerchantID != merchantID {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *inMemoryProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	registerUndo(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		p.Stock += quantity
	})
	return true, nil
}

func (r *inMemoryProductRepo) IncrementStock(ctx context.Context, id uuid.UUID, quantity int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p.Stock += quantity
	clone := *p
	return &clone, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.transactions[t.ID] = &clone
	registerUndo(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.transactions, t.ID)
	})
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.MerchantID == nil || *t.MerchantID != params.MerchantID {
			continue
		}
		if params.CardUID != nil && t.CardUID != *params.CardUID {
			continue
		}
		if params.From != nil && t.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && t.CreatedAt.After(*params.To) {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*ports.TransactionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.TransactionStats{}
	for _, t := range r.transactions {
		if t.MerchantID == nil || *t.MerchantID != merchantID {
			continue
		}
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		stats.TotalTransactions++
		stats.TotalRevenue += t.Amount
		for i := range t.Items {
			stats.ItemsSold += t.Items[i].Quantity
		}
	}
	return stats, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// The postgres table has a unique index on key; a losing concurrent
	// insert aborts its transaction.
	if _, exists := r.logs[log.Key]; exists {
		return fmt.Errorf("duplicate idempotency key %s", log.Key)
	}
	r.logs[log.Key] = log
	registerUndo(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.logs, log.Key)
	})
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	return l, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// --- In-Memory Transactor ---

// memTx is a pgx.Tx stand-in that collects undo callbacks as the repos
// apply their changes. Rollback before Commit replays the undos in reverse,
// which gives the in-memory stack the same all-or-nothing behavior as the
// real database transaction.
type memTx struct {
	noopTx
	mu        sync.Mutex
	undo      []func()
	committed bool
}

func registerUndo(tx pgx.Tx, fn func()) {
	if m, ok := tx.(*memTx); ok {
		m.mu.Lock()
		m.undo = append(m.undo, fn)
		m.mu.Unlock()
	}
}

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed = true
	t.undo = nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

// noopTx stubs out the rest of the pgx.Tx surface.
type noopTx struct{}

func (t noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t noopTx) Commit(ctx context.Context) error          { return nil }
func (t noopTx) Rollback(ctx context.Context) error        { return nil }
func (t noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t noopTx) Conn() *pgx.Conn { return nil }
