package resolve

import (
	"errors"
	"fmt"
	"io/fs"

	"contract-chat-mapping/internal/core/domain"
)

// Store is an ordered contract_number -> ResultRow mapping backing the
// resumable merge model. Prior key order is authoritative; freshly seen
// keys append at the end in their first-seen order.
type Store struct {
	order []string
	rows  map[string]domain.ResultRow
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rows: make(map[string]domain.ResultRow)}
}

// LoadStore reads a previously persisted result set. A missing file
// yields an empty store; a malformed file is an error.
func LoadStore(path string) (*Store, error) {
	s := NewStore()

	records, err := readRecords(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == domain.ResultColumns[0] {
			continue
		}
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		row, err := domain.RowFromFields(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+1, path, err)
		}
		s.put(row)
	}
	return s, nil
}

func (s *Store) put(row domain.ResultRow) {
	if _, ok := s.rows[row.ContractNumber]; !ok {
		s.order = append(s.order, row.ContractNumber)
	}
	s.rows[row.ContractNumber] = row
}

// Len returns the number of stored rows.
func (s *Store) Len() int { return len(s.order) }

// Get looks up the row for a contract number.
func (s *Store) Get(contractNumber string) (domain.ResultRow, bool) {
	row, ok := s.rows[contractNumber]
	return row, ok
}

// Rows returns all rows in canonical order.
func (s *Store) Rows() []domain.ResultRow {
	out := make([]domain.ResultRow, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.rows[key])
	}
	return out
}

// Partition splits the input list into the numbers still needing work
// and those whose stored status is configured as final.
func (s *Store) Partition(input []string, final map[domain.Status]bool) (todo, skipped []string) {
	for _, number := range input {
		if row, ok := s.rows[number]; ok && final[row.Status] {
			skipped = append(skipped, number)
			continue
		}
		todo = append(todo, number)
	}
	return todo, skipped
}

// Merge folds freshly computed rows into the store. Keys already
// present keep their position and are overwritten; new keys append in
// the order given. Merging rows identical to the stored ones leaves
// the store unchanged, so re-running a fully final input is a no-op.
func (s *Store) Merge(fresh []domain.ResultRow) {
	for _, row := range fresh {
		s.put(row)
	}
}

// Persist writes the store to disk, creating parent directories as
// needed. The codec is chosen by file extension (.xlsx, otherwise
// CSV).
func (s *Store) Persist(path string) error {
	records := make([][]string, 0, len(s.order)+1)
	records = append(records, domain.ResultColumns)
	for _, row := range s.Rows() {
		records = append(records, row.Fields())
	}
	if err := writeRecords(path, records); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	return nil
}
