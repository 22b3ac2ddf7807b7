package model

// StatusCode is returned synchronously on job submission. The numeric
// values are part of the wire contract and must stay stable.
type StatusCode int

const (
	StatusOk                 StatusCode = 0
	StatusInvalidTiles       StatusCode = 1
	StatusInvalidStockTiles  StatusCode = 2
	StatusTaskAlreadyRunning StatusCode = 3
	StatusServerUnavailable  StatusCode = 4
	StatusTooManyPanels      StatusCode = 5
	StatusTooManyStockPanels StatusCode = 6
)

func (s StatusCode) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusInvalidTiles:
		return "InvalidTiles"
	case StatusInvalidStockTiles:
		return "InvalidStockTiles"
	case StatusTaskAlreadyRunning:
		return "TaskAlreadyRunning"
	case StatusServerUnavailable:
		return "ServerUnavailable"
	case StatusTooManyPanels:
		return "TooManyPanels"
	case StatusTooManyStockPanels:
		return "TooManyStockPanels"
	default:
		return "Unknown"
	}
}
