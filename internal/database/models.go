package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

type OrderType struct {
	ID   uuid.UUID
	Name string
}

type Table struct {
	ID        uuid.UUID
	Name      string
	Temporary bool
	CreatedAt time.Time
}

type Product struct {
	ID       uuid.UUID
	Name     string
	Cost     pgtype.Numeric
	Stock    int32
	IsActive bool
}

type Dish struct {
	ID       uuid.UUID
	Name     string
	Cost     pgtype.Numeric
	IsActive bool
}

type Stew struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

type Extra struct {
	ID       uuid.UUID
	Name     string
	Cost     pgtype.Numeric
	IsActive bool
}

type Order struct {
	ID            uuid.UUID
	Folio         string
	DailyNumber   int32
	OrderTypeID   pgtype.UUID
	OrderTypeName string
	Status        string
	TableID       pgtype.UUID
	TableName     pgtype.Text
	CustomerName  pgtype.Text
	Notes         pgtype.Text
	Total         pgtype.Numeric
	CreatedBy     pgtype.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        pgtype.Timestamptz
}

type SubOrder struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

type DishLine struct {
	ID         uuid.UUID
	SubOrderID uuid.UUID
	DishID     uuid.UUID
	DishName   string
	StewID     pgtype.UUID
	StewName   pgtype.Text
	UnitCost   pgtype.Numeric
	Quantity   int32
	Amount     pgtype.Numeric
	Notes      pgtype.Text
	Ready      bool
	Delivered  bool
	CreatedAt  time.Time
}

type ProductLine struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitCost    pgtype.Numeric
	Quantity    int32
	Amount      pgtype.Numeric
	Ready       bool
	Delivered   bool
	CreatedAt   time.Time
}

type ExtraLine struct {
	ID         uuid.UUID
	DishLineID uuid.UUID
	ExtraID    uuid.UUID
	ExtraName  string
	UnitCost   pgtype.Numeric
	Quantity   int32
	Amount     pgtype.Numeric
	Ready      bool
	Delivered  bool
	CreatedAt  time.Time
}

// LineRef addresses a line item of any kind (see enum.LineKinds).
type LineRef struct {
	Kind string    `json:"tipo"`
	ID   uuid.UUID `json:"id"`
}

// LineState is the readiness/delivery state of a line item together with the
// order it ultimately belongs to.
type LineState struct {
	Kind      string    `json:"tipo"`
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"orden_id"`
	Ready     bool      `json:"listo"`
	Delivered bool      `json:"entregado"`
}
