package models

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Cart         []CartItem `gorm:"foreignKey:UserID"        json:"-"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Description string  `json:"description"`
}

// ProductSummary is the list-view shape: description is deliberately omitted.
type ProductSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID    uint `gorm:"index;not null"              json:"user_id"`
	ProductID uint `gorm:"index;not null"              json:"product_id"`
	Quantity  uint `gorm:"not null;default:1"          json:"quantity"`
}
