// Package memory is a process-local storage backend implementing the
// repository interfaces. It backs `database.driver: memory` and the tests.
package memory

import (
	"alcyxob/routine-progress/internal/domain"
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// dataset is everything the store holds. It is replaced wholesale on rollback.
type dataset struct {
	configs       []domain.EffectiveConfig
	states        map[primitive.ObjectID]domain.WeeklyState
	templates     []domain.RoutineTemplate
	templateItems []domain.TemplateItem
	routines      []domain.TraineeRoutine
	routineItems  []domain.TraineeRoutineItem
	logs          []domain.TrainingLogEntry
	exports       []domain.HistoryExport
}

func newDataset() *dataset {
	return &dataset{states: make(map[primitive.ObjectID]domain.WeeklyState)}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		configs:       append([]domain.EffectiveConfig(nil), d.configs...),
		states:        make(map[primitive.ObjectID]domain.WeeklyState, len(d.states)),
		templates:     append([]domain.RoutineTemplate(nil), d.templates...),
		templateItems: append([]domain.TemplateItem(nil), d.templateItems...),
		routines:      append([]domain.TraineeRoutine(nil), d.routines...),
		routineItems:  append([]domain.TraineeRoutineItem(nil), d.routineItems...),
		logs:          append([]domain.TrainingLogEntry(nil), d.logs...),
		exports:       append([]domain.HistoryExport(nil), d.exports...),
	}
	for k, v := range d.states {
		c.states[k] = v
	}
	return c
}

// Store is safe for concurrent use. Transactions are serialized store-wide
// and work on a private copy of the dataset that replaces the shared one on
// commit, so other readers never observe uncommitted writes. Writes made
// outside a transaction wait for running transactions to finish.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

// txData returns the working dataset of the transaction carried by ctx.
func txData(ctx context.Context) *dataset {
	d, _ := ctx.Value(txKey{}).(*dataset)
	return d
}

// WithinTx implements repository.Transactor. All transactions share one lock
// regardless of key. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error {
	if txData(ctx) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func (s *Store) write(ctx context.Context, fn func(d *dataset) error) error {
	if work := txData(ctx); work != nil {
		return fn(work)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(ctx context.Context, fn func(d *dataset)) {
	if work := txData(ctx); work != nil {
		fn(work)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}
