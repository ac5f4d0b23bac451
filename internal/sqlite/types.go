// File path: internal/sqlite/types.go
package sqlite

// Product is a catalog row. Price and rating columns are pointers because the
// source feeds carry unparseable values that are stored as NULL rather than
// dropping the row.
type Product struct {
	ProductID     int64    `db:"product_id"`
	Title         string   `db:"title"`
	Description   *string  `db:"description"`
	Highlights    *string  `db:"highlights"`
	Category1     *string  `db:"category_1"`
	Category2     *string  `db:"category_2"`
	Category3     *string  `db:"category_3"`
	MRP           *float64 `db:"mrp"`
	ProductRating *float64 `db:"product_rating"`
	SellerName    *string  `db:"seller_name"`
	SellerRating  *float64 `db:"seller_rating"`
	ImageLinks    *string  `db:"image_links"`
}

// Interaction is a historical user action on a product. Rows are written by
// the interaction endpoint and read-only to the pipeline.
type Interaction struct {
	ID                   int64  `db:"id"`
	UserID               int64  `db:"user_id"`
	ProductID            int64  `db:"product_id"`
	InteractionType      string `db:"interaction_type"`
	InteractionTimestamp string `db:"interaction_timestamp"`
}

// User is the minimal account row the API glue needs.
type User struct {
	UserID         int64  `db:"user_id"`
	Username       string `db:"username"`
	Email          string `db:"email"`
	PasswordDigest string `db:"password_digest"`
}

// InteractionTypes enumerates the accepted interaction kinds.
var InteractionTypes = map[string]bool{
	"view":        true,
	"like":        true,
	"add_to_cart": true,
	"purchase":    true,
}
