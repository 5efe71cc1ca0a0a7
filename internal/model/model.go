// Package model содержит доменные сущности магазина: товары, продажи и пользователей.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold это количество, при котором и ниже которого остаток считается низким.
const LowStockThreshold = 20

// StockStatus описывает производный статус остатка товара. Никогда не сохраняется.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "In Stock"
	StockStatusLow        StockStatus = "Low"
	StockStatusOutOfStock StockStatus = "Out of Stock"
)

// StatusOf вычисляет статус остатка по количеству.
func StatusOf(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusInStock
	}
}

// Product представляет товар каталога.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category,omitempty"`
}

// Status возвращает производный статус остатка товара.
func (p Product) Status() StockStatus {
	return StatusOf(p.Quantity)
}

// ProductView это товар вместе с вычисленным статусом остатка.
type ProductView struct {
	Product
	Status StockStatus `json:"status"`
}

// View оборачивает товар статусом остатка.
func (p Product) View() ProductView {
	return ProductView{Product: p, Status: p.Status()}
}

// ProductInput содержит поля для создания товара.
type ProductInput struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Category string          `json:"category"`
}

// ProductPatch содержит частичное обновление товара. Nil-поля не изменяются.
type ProductPatch struct {
	Name     *string          `json:"name,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
	Category *string          `json:"category,omitempty"`
}

// Apply возвращает копию товара с применёнными изменениями.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	return product
}

// PaymentMethod описывает способ оплаты продажи.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentMomo PaymentMethod = "momo"
)

// Valid сообщает, поддерживается ли способ оплаты.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentMomo
}

// Sale описывает неизменяемую запись о продаже. Имя и цена товара денормализованы
// на момент продажи, поэтому запись не меняется при правке или удалении товара.
type Sale struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	QuantitySold  int             `json:"quantitySold"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	SoldByID      string          `json:"soldById"`
	SoldBy        string          `json:"soldBy"`
	Date          time.Time       `json:"date"`
}

// SaleRecord содержит данные новой продажи без идентификатора.
type SaleRecord struct {
	ProductID     string
	ProductName   string
	UnitPrice     decimal.Decimal
	QuantitySold  int
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	SoldByID      string
	SoldBy        string
	Date          time.Time
}

// Role описывает роль пользователя.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User представляет учётную запись администратора или продавца.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"passwordHash"`
	Role         Role   `json:"role"`
}

// Current возвращает публичное представление пользователя.
func (u User) Current() CurrentUser {
	return CurrentUser{ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role}
}

// UserInput содержит поля для создания пользователя.
type UserInput struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"oneof=admin staff"`
}

// UserPatch содержит частичное обновление пользователя. Nil-поля не изменяются.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
}

// CurrentUser это пользователь текущей сессии без секретов.
type CurrentUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
