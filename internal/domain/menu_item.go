package domain

type MenuItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	IsActive    bool     `json:"isActive"`
	Allergens   []string `json:"allergens"`
}
