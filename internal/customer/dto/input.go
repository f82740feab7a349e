package dto

import "github.com/fekuna/omnipos-pricing-service/internal/model"

type ChangeTypeInput struct {
	CustomerID string              `json:"customer_id"`
	NewType    model.CustomerClass `json:"new_type"`
	ChangedBy  string              `json:"changed_by"`
}
