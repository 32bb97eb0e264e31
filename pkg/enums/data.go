package enums

import "fmt"

// Table names the persisted collections.
type Table string

const (
	TableProducts  Table = "products"
	TableCustomers Table = "customers"
)

// String implements fmt.Stringer.
func (t Table) String() string {
	return string(t)
}

// KeyColumn returns the column records of the table are matched on.
func (t Table) KeyColumn() string {
	if t == TableCustomers {
		return "mobile"
	}
	return "id"
}

// ParseTable converts raw input into a Table.
func ParseTable(value string) (Table, error) {
	switch Table(value) {
	case TableProducts, TableCustomers:
		return Table(value), nil
	}
	return "", fmt.Errorf("unknown table %q", value)
}

// DataAction enumerates the operations of the data client contract as they
// travel over the proxy wire.
type DataAction string

const (
	DataActionGetAll  DataAction = "getAll"
	DataActionGetByID DataAction = "getById"
	DataActionAdd     DataAction = "add"
	DataActionUpdate  DataAction = "update"
	DataActionDelete  DataAction = "delete"
	DataActionSetAll  DataAction = "setAll"
)

var validDataActions = []DataAction{
	DataActionGetAll,
	DataActionGetByID,
	DataActionAdd,
	DataActionUpdate,
	DataActionDelete,
	DataActionSetAll,
}

// String implements fmt.Stringer.
func (a DataAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known DataAction.
func (a DataAction) IsValid() bool {
	for _, candidate := range validDataActions {
		if candidate == a {
			return true
		}
	}
	return false
}
