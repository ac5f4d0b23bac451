// File path: internal/api/types.go
package api

import "github.com/nicodishanthj/shopsense/internal/recommend"

type recommendationRequest struct {
	UserID int64  `json:"user_id"`
	Query  string `json:"query"`
}

type recommendationResponse struct {
	UserID   int64               `json:"user_id"`
	Query    string              `json:"query"`
	Products []recommend.Product `json:"products"`
}

type interactionRequest struct {
	UserID    int64  `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Type      string `json:"type"`
}

type ingestProduct struct {
	ProductID     int64    `json:"product_id"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	Highlights    *string  `json:"highlights"`
	Category1     *string  `json:"category_1"`
	Category2     *string  `json:"category_2"`
	Category3     *string  `json:"category_3"`
	MRP           *float64 `json:"mrp"`
	ProductRating *float64 `json:"product_rating"`
	SellerName    *string  `json:"seller_name"`
	SellerRating  *float64 `json:"seller_rating"`
	ImageLinks    *string  `json:"image_links"`
}

type ingestRequest struct {
	Products []ingestProduct `json:"products"`
}

type ingestResponse struct {
	Ingested int `json:"ingested"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}
