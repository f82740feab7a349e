package model

type PricingMode string

const (
	PricingModeB2C PricingMode = "B2C"
	PricingModeB2B PricingMode = "B2B"
)

// PricingContext decides which price column a customer sees.
type PricingContext struct {
	CustomerClass      CustomerClass `json:"customer_class"`
	PricingMode        PricingMode   `json:"pricing_mode"`
	ShowsMerchantPrice bool          `json:"shows_merchant_price"`
}

// RetailContext is the fallback for anonymous customers, missing profiles and store failures.
func RetailContext() PricingContext {
	return PricingContext{
		CustomerClass:      CustomerClassNormal,
		PricingMode:        PricingModeB2C,
		ShowsMerchantPrice: false,
	}
}

// ContextFor maps a customer class to its pricing context.
func ContextFor(class CustomerClass) PricingContext {
	if class == CustomerClassMerchant {
		return PricingContext{
			CustomerClass:      CustomerClassMerchant,
			PricingMode:        PricingModeB2B,
			ShowsMerchantPrice: true,
		}
	}
	return RetailContext()
}
