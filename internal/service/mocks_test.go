package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/repository"
	"github.com/noah-isme/training-import/internal/source"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
)

// memStore is an in-memory store whose WithinTx restores the previous state
// when fn fails.
type memStore struct {
	sessions    map[string]models.TrainingSession
	persons     map[string]models.Person
	enrollments []models.Enrollment
	batches     []models.ImportBatch

	seq          int
	commits      int
	rollbacks    int
	failEnrollAt int
	raceOnInsert map[string]bool
	updates      int
}

func newMemStore() *memStore {
	return &memStore{
		sessions: map[string]models.TrainingSession{
			"s-1": {ID: "s-1", Title: "春季班", StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		persons:      map[string]models.Person{},
		raceOnInsert: map[string]bool{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	persons := make(map[string]models.Person, len(m.persons))
	for k, v := range m.persons {
		persons[k] = v
	}
	enrollments := append([]models.Enrollment(nil), m.enrollments...)
	batches := append([]models.ImportBatch(nil), m.batches...)

	err := fn(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.persons, m.enrollments, m.batches = persons, enrollments, batches
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &session, nil
}

func (m *memStore) personByPhone(phoneKey string) (models.Person, bool) {
	for _, p := range m.persons {
		if p.PhoneKey == phoneKey {
			return p, true
		}
	}
	return models.Person{}, false
}

type memPersons struct{ *memStore }

func (m memPersons) FindByPhoneKey(ctx context.Context, phoneKey string) (*models.Person, error) {
	p, ok := m.personByPhone(phoneKey)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m memPersons) Insert(ctx context.Context, person *models.Person) error {
	if m.raceOnInsert[person.PhoneKey] {
		// another writer wins the race with its own values
		delete(m.raceOnInsert, person.PhoneKey)
		rival := models.Person{ID: m.nextID("p"), PhoneKey: person.PhoneKey}
		m.persons[rival.ID] = rival
		return repository.ErrDuplicatePhoneKey
	}
	if _, ok := m.personByPhone(person.PhoneKey); ok {
		return repository.ErrDuplicatePhoneKey
	}
	person.ID = m.nextID("p")
	m.persons[person.ID] = *person
	return nil
}

func (m memPersons) UpdateLatest(ctx context.Context, id string, name, org *string) error {
	p, ok := m.persons[id]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		p.LatestName = name
	}
	if org != nil {
		p.LatestOrg = org
	}
	m.persons[id] = p
	m.updates++
	return nil
}

type memEnrollments struct{ *memStore }

func (m memEnrollments) Insert(ctx context.Context, enrollment *models.Enrollment) error {
	if m.failEnrollAt > 0 && len(m.enrollments)+1 == m.failEnrollAt {
		return errors.New("connection reset")
	}
	enrollment.ID = m.nextID("e")
	m.enrollments = append(m.enrollments, *enrollment)
	return nil
}

type memBatches struct{ *memStore }

func (m memBatches) Insert(ctx context.Context, batch *models.ImportBatch) error {
	batch.ID = m.nextID("b")
	m.batches = append(m.batches, *batch)
	return nil
}

func (m memBatches) ExistsFingerprint(ctx context.Context, sessionID, fingerprint string) (bool, error) {
	for _, b := range m.batches {
		if b.SessionID == sessionID && b.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

type sheetsStub struct {
	sheets []source.Sheet
	err    error
}

func (s sheetsStub) ReadSheets(path string) ([]source.Sheet, error) {
	return s.sheets, s.err
}

type tablesStub struct {
	tables []source.Table
	err    error
}

func (s tablesStub) ReadTables(path string) ([]source.Table, error) {
	return s.tables, s.err
}

// sheet builds a roster sheet whose records start on line 2.
func sheet(name string, headers []string, rows ...[]string) source.Sheet {
	s := source.Sheet{Name: name, HeaderLine: 1, Headers: headers}
	for i, row := range rows {
		s.Records = append(s.Records, source.Record{Line: i + 2, Cells: row})
	}
	return s
}

func strPtr(v string) *string {
	return &v
}

type memCache struct {
	items   map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

