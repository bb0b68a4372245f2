package models

import "time"

type Product struct {
	ID             string      `firestore:"id" json:"id"`
	Name           string      `firestore:"name" json:"name"`
	Tagline        string      `firestore:"tagline,omitempty" json:"tagline,omitempty"`
	Description    string      `firestore:"description,omitempty" json:"description,omitempty"`
	Price          float64     `firestore:"price" json:"price"`
	Active         bool        `firestore:"active" json:"active"`
	HeroImageProps *ImageProps `firestore:"heroImageProps,omitempty" json:"heroImageProps,omitempty"`
	ImageSet
	CreatedDate  time.Time `firestore:"createdDate" json:"createdDate"`
	ModifiedDate time.Time `firestore:"modifiedDate" json:"modifiedDate"`
}

type OrderStatus string

const (
	OrderStatusInCart     OrderStatus = "inCart"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusActivated  OrderStatus = "activated"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order references its Product by document id only.
type Order struct {
	ID          string      `firestore:"id" json:"id"`
	OrderNumber string      `firestore:"orderNumber" json:"orderNumber"`
	ProductID   string      `firestore:"productId" json:"productId"`
	CustomerID  string      `firestore:"customerId,omitempty" json:"customerId,omitempty"`
	Email       string      `firestore:"email,omitempty" json:"email,omitempty"`
	ListPrice   float64     `firestore:"listPrice" json:"listPrice"`
	Status      OrderStatus `firestore:"status" json:"status"`
	CreatedDate time.Time   `firestore:"createdDate" json:"createdDate"`
}
