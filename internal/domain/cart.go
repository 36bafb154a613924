package domain

import "time"

// CartLine is one unit of a product as submitted at checkout. Quantity zero
// means one; repeated lines for the same product are summed by the
// coordinator.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartItem is a stored cart entry: a copy of the product's sellable
// attributes at add-time plus a client-generated line id used only for
// list-keying in the UI.
type CartItem struct {
	LineID    string    `bson:"line_id" json:"line_id"`
	ProductID int64     `bson:"product_id" json:"product_id"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Vendor    string    `bson:"vendor" json:"vendor"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Cart is the persisted per-user cart. It is convenience state for the PWA;
// checkout operates on the lines the client submits, not on this record.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}
