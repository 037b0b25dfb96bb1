package domain

import "time"

type Setting struct {
	Key       string    `json:"key" dynamodbav:"setting_key"`
	Value     string    `json:"value" dynamodbav:"value"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}
