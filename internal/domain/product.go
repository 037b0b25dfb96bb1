package domain

import "time"

type Product struct {
	ProductID   string    `json:"id" dynamodbav:"product_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	Price       Money     `json:"price" dynamodbav:"price"`
	Stock       int       `json:"stock" dynamodbav:"stock"`
	ImageKey    string    `json:"-" dynamodbav:"image_key,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty" dynamodbav:"-"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       Money  `json:"price" validate:"gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Enable      *bool  `json:"enable"`
}
