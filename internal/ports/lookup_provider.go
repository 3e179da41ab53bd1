package ports

import "github.com/bnema/pnr-status-cli/internal/domain"

// LookupProvider resolves a PNR to its current record. A missing PNR is
// reported as domain.ErrRecordNotFound; any other error is a provider failure.
type LookupProvider interface {
	Find(id domain.Identifier) (domain.Record, error)
}
