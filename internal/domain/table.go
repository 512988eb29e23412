package domain

type Table struct {
	ID             int64      `json:"id"`
	Number         int        `json:"number"`
	TableState     TableState `json:"tableState"`
	CurrentOrderID *int64     `json:"currentOrderId"`
}

type TableState string

const (
	TableAvailable    TableState = "AVAILABLE"
	TableOccupied     TableState = "OCCUPIED"
	TableReserved     TableState = "RESERVED"
	TableOutOfService TableState = "OUT_OF_SERVICE"
)

func (s TableState) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableOutOfService:
		return true
	}
	return false
}
