package domain

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const PaymentMethodRazorpay = "razorpay"

type OrderItem struct {
	ProductID string `json:"productId" dynamodbav:"product_id"`
	Quantity  int    `json:"quantity" dynamodbav:"quantity"`
	Price     Money  `json:"price" dynamodbav:"price"`
}

type Order struct {
	OrderID          string      `json:"id" dynamodbav:"order_id"`
	UserID           string      `json:"userId" dynamodbav:"user_id"`
	Items            []OrderItem `json:"products" dynamodbav:"items"`
	TotalAmount      Money       `json:"totalAmount" dynamodbav:"total_amount"`
	PaymentMethod    string      `json:"paymentMethod" dynamodbav:"payment_method"`
	Status           string      `json:"status" dynamodbav:"status"`
	GatewayOrderID   string      `json:"gatewayOrderId,omitempty" dynamodbav:"gateway_order_id,omitempty"`
	GatewayPaymentID string      `json:"gatewayPaymentId,omitempty" dynamodbav:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time   `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" dynamodbav:"updated_at"`
}

type UpdateOrderRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}
