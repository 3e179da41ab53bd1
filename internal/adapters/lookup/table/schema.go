package table

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Records []recordSchema `toml:"records"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported records schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type recordSchema struct {
	PNR              string `toml:"pnr"`
	TrainName        string `toml:"train_name"`
	CurrentLocation  string `toml:"current_location"`
	EstimatedArrival string `toml:"estimated_arrival"`
	SeatDetails      string `toml:"seat_details"`
}
