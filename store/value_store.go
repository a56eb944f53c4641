package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/gcbaptista/go-column-index/model"
)

// ValueStore holds the current value of every (column, row) cell as bulk
// bytes. Index columns are fed from here: setting a cell returns the
// previous bulk so the old postings can be removed.
type ValueStore struct {
	Mu     sync.RWMutex
	Values map[model.ColumnID]map[model.RowID][]byte
}

func NewValueStore() *ValueStore {
	return &ValueStore{Values: make(map[model.ColumnID]map[model.RowID][]byte)}
}

// gobValueStoreData is a helper struct for Gob encoding/decoding ValueStore data.
// It excludes the mutex.
type gobValueStoreData struct {
	Values map[model.ColumnID]map[model.RowID][]byte
}

// GobEncode implements the gob.GobEncoder interface for ValueStore.
func (vs *ValueStore) GobEncode() ([]byte, error) {
	vs.Mu.RLock()
	defer vs.Mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobValueStoreData{Values: vs.Values}); err != nil {
		return nil, fmt.Errorf("failed to gob encode value store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for ValueStore.
func (vs *ValueStore) GobDecode(data []byte) error {
	decodedData := gobValueStoreData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode value store data: %w", err)
	}

	vs.Mu.Lock()
	defer vs.Mu.Unlock()

	vs.Values = decodedData.Values
	if vs.Values == nil {
		vs.Values = make(map[model.ColumnID]map[model.RowID][]byte)
	}
	return nil
}

// Get returns a copy of the bulk stored for (column, row).
func (vs *ValueStore) Get(column model.ColumnID, row model.RowID) ([]byte, bool) {
	vs.Mu.RLock()
	defer vs.Mu.RUnlock()

	bulk, ok := vs.Values[column][row]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), bulk...), true
}

// Swap stores bulk for (column, row) and returns what was there before.
// A nil bulk clears the cell.
func (vs *ValueStore) Swap(column model.ColumnID, row model.RowID, bulk []byte) []byte {
	vs.Mu.Lock()
	defer vs.Mu.Unlock()

	if vs.Values == nil {
		vs.Values = make(map[model.ColumnID]map[model.RowID][]byte)
	}
	rows := vs.Values[column]
	old := rows[row]
	if bulk == nil {
		delete(rows, row)
		if len(rows) == 0 {
			delete(vs.Values, column)
		}
		return old
	}
	if rows == nil {
		rows = make(map[model.RowID][]byte)
		vs.Values[column] = rows
	}
	rows[row] = append([]byte(nil), bulk...)
	return old
}

// DropColumn forgets every value of a column.
func (vs *ValueStore) DropColumn(column model.ColumnID) {
	vs.Mu.Lock()
	defer vs.Mu.Unlock()
	delete(vs.Values, column)
}

// Rows returns the number of rows holding a value for column.
func (vs *ValueStore) Rows(column model.ColumnID) int {
	vs.Mu.RLock()
	defer vs.Mu.RUnlock()
	return len(vs.Values[column])
}
