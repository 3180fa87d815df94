package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

// MemoryDB is an in-process Repository. All operations are serialized behind
// one mutex; ReserveTokens and ReviewKYC stage their writes and apply them only
// when the callback succeeds.
type MemoryDB struct {
	logger *logger.Logger
	now    func() time.Time

	mu          sync.Mutex
	seq         int64
	users       map[int64]*models.User
	kycRecords  map[int64]*models.KYCRecord
	properties  map[int64]*models.Property
	investments map[int64]*models.Investment
	tokens      map[int64]*models.Token
}

var _ models.Repository = (*MemoryDB)(nil)

func NewMemoryDB(logger *logger.Logger) *MemoryDB {
	return &MemoryDB{
		logger:      logger,
		now:         time.Now,
		users:       make(map[int64]*models.User),
		kycRecords:  make(map[int64]*models.KYCRecord),
		properties:  make(map[int64]*models.Property),
		investments: make(map[int64]*models.Investment),
		tokens:      make(map[int64]*models.Token),
	}
}

func (m *MemoryDB) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *MemoryDB) stamp(created *time.Time) {
	if created.IsZero() {
		*created = m.now()
	}
}

func (m *MemoryDB) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Users

func (m *MemoryDB) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryDB) GetUserByWallet(_ context.Context, wallet string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.WalletAddress == wallet {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *MemoryDB) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.WalletAddress == user.WalletAddress {
			return models.NewStateConflictError("failed to create user", fmt.Errorf("wallet %s already registered", user.WalletAddress))
		}
	}
	user.ID = m.nextID()
	m.stamp(&user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryDB) TouchLastLogin(_ context.Context, userID int64, at time.Time) error {
	return m.updateUser(userID, func(u *models.User) { u.LastLogin = &at })
}

func (m *MemoryDB) SetUserActive(_ context.Context, userID int64, active bool) error {
	return m.updateUser(userID, func(u *models.User) { u.IsActive = active })
}

func (m *MemoryDB) SetUserAdmin(_ context.Context, userID int64, admin bool) error {
	return m.updateUser(userID, func(u *models.User) { u.IsAdmin = admin })
}

func (m *MemoryDB) SetUserEmail(_ context.Context, userID int64, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	for _, other := range m.users {
		if other.ID != userID && other.Email != nil && *other.Email == email {
			return models.NewStateConflictError("failed to update user email", fmt.Errorf("email %s already registered", email))
		}
	}
	u.Email = &email
	u.UpdatedAt = m.now()
	return nil
}

func (m *MemoryDB) updateUser(userID int64, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = m.now()
	return nil
}

// KYC records

func (m *MemoryDB) CreateKYCRecord(_ context.Context, record *models.KYCRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[record.UserID]; !ok {
		return models.ErrUserNotFound
	}
	record.ID = m.nextID()
	m.stamp(&record.CreatedAt)
	record.UpdatedAt = record.CreatedAt
	cp := *record
	m.kycRecords[record.ID] = &cp
	return nil
}

func (m *MemoryDB) GetKYCRecord(_ context.Context, id int64) (*models.KYCRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.kycRecords[id]
	if !ok {
		return nil, models.ErrKYCRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryDB) ListKYCRecordsByUser(_ context.Context, userID int64) ([]*models.KYCRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userRecords(userID), nil
}

// userRecords returns copies of the user's records, newest first.
func (m *MemoryDB) userRecords(userID int64) []*models.KYCRecord {
	out := make([]*models.KYCRecord, 0)
	for _, r := range m.kycRecords {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MemoryDB) LatestKYCRecord(_ context.Context, userID int64) (*models.KYCRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.userRecords(userID)
	if len(records) == 0 {
		return nil, models.ErrKYCRecordNotFound
	}
	return records[0], nil
}

func (m *MemoryDB) ListKYCRecordsByStatus(_ context.Context, status string) ([]*models.KYCRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.KYCRecord, 0)
	for _, r := range m.kycRecords {
		if status == "" || r.Status == status {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryDB) ReviewKYC(_ context.Context, recordID int64, fn func(*models.KYCRecord, *models.User) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.kycRecords[recordID]
	if !ok {
		return models.ErrKYCRecordNotFound
	}
	owner, ok := m.users[stored.UserID]
	if !ok {
		return models.ErrUserNotFound
	}

	record, user := *stored, *owner
	if err := fn(&record, &user); err != nil {
		return err
	}

	now := m.now()
	record.UpdatedAt = now
	user.UpdatedAt = now
	m.kycRecords[recordID] = &record
	m.users[user.ID] = &user
	return nil
}

// Properties

func (m *MemoryDB) CreateProperty(_ context.Context, property *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	property.ID = m.nextID()
	m.stamp(&property.CreatedAt)
	property.UpdatedAt = property.CreatedAt
	cp := *property
	m.properties[property.ID] = &cp
	return nil
}

func (m *MemoryDB) GetProperty(_ context.Context, id int64) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return nil, models.ErrPropertyNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryDB) ListProperties(_ context.Context, filter models.PropertyFilter) (*models.PropertyPage, error) {
	page, size := normalizePage(filter.Page, filter.Size)
	search := strings.ToLower(filter.Search)

	m.mu.Lock()
	matched := make([]*models.Property, 0)
	for _, p := range m.properties {
		if !p.IsActive {
			continue
		}
		if filter.Jurisdiction != "" && p.Jurisdiction != filter.Jurisdiction {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	offset := (page - 1) * size
	items := make([]*models.Property, 0, size)
	if offset < total {
		end := offset + size
		if end > total {
			end = total
		}
		items = append(items, matched[offset:end]...)
	}

	return &models.PropertyPage{
		Items:   items,
		Total:   int64(total),
		Page:    page,
		Size:    size,
		HasNext: offset+size < total,
	}, nil
}

func matchesSearch(p *models.Property, search string) bool {
	if strings.Contains(strings.ToLower(p.Name), search) || strings.Contains(strings.ToLower(p.Location), search) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), search)
}

func (m *MemoryDB) UpdateProperty(_ context.Context, id int64, fn func(*models.Property) error) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.properties[id]
	if !ok {
		return nil, models.ErrPropertyNotFound
	}
	updated := *stored
	if err := fn(&updated); err != nil {
		return nil, err
	}
	// Supply and ledger counters are not writable here.
	updated.ID = stored.ID
	updated.TotalTokens = stored.TotalTokens
	updated.TokensSold = stored.TokensSold
	updated.TotalRaised = stored.TotalRaised
	updated.InvestorCount = stored.InvestorCount
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = m.now()
	m.properties[id] = &updated
	cp := updated
	return &cp, nil
}

// Ledger

func (m *MemoryDB) ReserveTokens(_ context.Context, propertyID int64, fn func(*models.Property, models.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.properties[propertyID]
	if !ok {
		return models.ErrPropertyNotFound
	}

	property := *stored
	tx := &memLedgerTx{db: m}
	if err := fn(&property, tx); err != nil {
		return err
	}

	if property.TokensSold < 0 || property.TokensSold > stored.TotalTokens {
		return fmt.Errorf("token reservation failed: tokens_sold %d outside [0, %d]", property.TokensSold, stored.TotalTokens)
	}
	for _, t := range tx.tokens {
		for _, existing := range m.tokens {
			if existing.PropertyID == t.PropertyID && existing.TokenNumber == t.TokenNumber {
				return models.NewStateConflictError("token reservation failed", fmt.Errorf("token number %d already minted", t.TokenNumber))
			}
		}
	}
	for _, inv := range tx.investments {
		for _, existing := range m.investments {
			if existing.TransactionHash == inv.TransactionHash {
				return models.NewStateConflictError("token reservation failed", fmt.Errorf("duplicate transaction reference %s", inv.TransactionHash))
			}
		}
	}

	now := m.now()
	for _, inv := range tx.investments {
		inv.ID = m.nextID()
		m.stamp(&inv.CreatedAt)
		cp := *inv
		m.investments[inv.ID] = &cp
	}
	for _, t := range tx.tokens {
		t.ID = m.nextID()
		m.stamp(&t.MintedAt)
		cp := *t
		m.tokens[t.ID] = &cp
	}

	stored.TokensSold = property.TokensSold
	stored.Status = property.Status
	stored.TotalRaised = property.TotalRaised
	stored.InvestorCount = property.InvestorCount
	stored.UpdatedAt = now
	m.logger.Debug("Reservation committed", "property_id", propertyID, "tokens_sold", stored.TokensSold,
		"investments", len(tx.investments), "tokens", len(tx.tokens))
	return nil
}

// memLedgerTx reads committed state from the store (the caller holds the
// lock) and stages creations until ReserveTokens commits.
type memLedgerTx struct {
	db          *MemoryDB
	investments []*models.Investment
	tokens      []*models.Token
}

func (l *memLedgerTx) GetUser(userID int64) (*models.User, error) {
	u, ok := l.db.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (l *memLedgerTx) HasInvested(userID, propertyID int64) (bool, error) {
	for _, inv := range l.db.investments {
		if inv.UserID == userID && inv.PropertyID == propertyID {
			return true, nil
		}
	}
	for _, inv := range l.investments {
		if inv.UserID == userID && inv.PropertyID == propertyID {
			return true, nil
		}
	}
	return false, nil
}

func (l *memLedgerTx) CreateInvestment(investment *models.Investment) error {
	l.investments = append(l.investments, investment)
	return nil
}

func (l *memLedgerTx) LastTokenNumber(propertyID int64) (int64, error) {
	var last int64
	for _, t := range l.db.tokens {
		if t.PropertyID == propertyID && t.TokenNumber > last {
			last = t.TokenNumber
		}
	}
	for _, t := range l.tokens {
		if t.PropertyID == propertyID && t.TokenNumber > last {
			last = t.TokenNumber
		}
	}
	return last, nil
}

func (l *memLedgerTx) CreateToken(token *models.Token) error {
	l.tokens = append(l.tokens, token)
	return nil
}

// Investments and tokens

func (m *MemoryDB) ListUserTransactions(_ context.Context, userID int64) ([]*models.UserTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.UserTransaction, 0)
	for _, inv := range m.investments {
		if inv.UserID != userID {
			continue
		}
		row := &models.UserTransaction{Investment: *inv}
		if p, ok := m.properties[inv.PropertyID]; ok {
			row.PropertyName = p.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryDB) GetInvestmentByReference(_ context.Context, userID int64, reference string) (*models.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.investments {
		if inv.UserID == userID && inv.TransactionHash == reference {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, models.ErrInvestmentNotFound
}

func (m *MemoryDB) ListPropertyTokens(_ context.Context, propertyID int64) ([]*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Token, 0)
	for _, t := range m.tokens {
		if t.PropertyID == propertyID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenNumber < out[j].TokenNumber })
	return out, nil
}
