package domain

// Record is a point-in-time status snapshot for one PNR. Refreshes replace the
// whole value, they never patch fields.
type Record struct {
	PNR              Identifier
	TrainName        string
	CurrentLocation  string
	EstimatedArrival string
	SeatDetails      string
}
