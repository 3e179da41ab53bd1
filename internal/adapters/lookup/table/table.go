// Package table serves PNR records from an in-memory table loaded from TOML.
package table

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const recordsPathKey = "records.path"

//go:embed trains.toml
var defaultTable []byte

type Table struct {
	records map[domain.Identifier]domain.Record
}

var _ ports.LookupProvider = (*Table)(nil)

// Load reads the table named by records.path, falling back to the embedded
// sample table when the key is unset.
func Load(cfg *viper.Viper) (*Table, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(recordsPathKey)
	if path == "" {
		return Parse(defaultTable)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("records file %s does not exist", path)
		}
		return nil, fmt.Errorf("read records file: %w", err)
	}

	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func Parse(data []byte) (*Table, error) {
	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode records file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	file.applyDefaults()

	records := make(map[domain.Identifier]domain.Record, len(file.Records))
	for i, entry := range file.Records {
		id, err := domain.ValidateIdentifier(entry.PNR)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := records[id]; dup {
			return nil, fmt.Errorf("record %d: duplicate pnr %s", i, id)
		}
		records[id] = fromSchema(id, entry)
	}

	return &Table{records: records}, nil
}

func New(records ...domain.Record) *Table {
	t := &Table{records: make(map[domain.Identifier]domain.Record, len(records))}
	for _, record := range records {
		t.records[record.PNR] = record
	}
	return t
}

func (t *Table) Find(id domain.Identifier) (domain.Record, error) {
	record, ok := t.records[id]
	if !ok {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return record, nil
}

// Identifiers lists every PNR in the table in ascending order.
func (t *Table) Identifiers() []domain.Identifier {
	ids := make([]domain.Identifier, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func fromSchema(id domain.Identifier, entry recordSchema) domain.Record {
	return domain.Record{
		PNR:              id,
		TrainName:        entry.TrainName,
		CurrentLocation:  entry.CurrentLocation,
		EstimatedArrival: entry.EstimatedArrival,
		SeatDetails:      entry.SeatDetails,
	}
}
