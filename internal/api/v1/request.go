package v1

type InitiatePaymentRequest struct {
	Amount                int64  `json:"amount" form:"amount" validate:"required,min=1"`
	TaxAmount             int64  `json:"tax_amount" form:"tax_amount" validate:"min=0"`
	ProductServiceCharge  int64  `json:"product_service_charge" form:"product_service_charge" validate:"min=0"`
	ProductDeliveryCharge int64  `json:"product_delivery_charge" form:"product_delivery_charge" validate:"min=0"`
	TotalAmount           int64  `json:"total_amount" form:"total_amount" validate:"min=0"`
	TransactionUUID       string `json:"transaction_uuid" form:"transaction_uuid" validate:"omitempty,max=64"`
	SuccessURL            string `json:"success_url" form:"success_url" validate:"omitempty,redirect"`
	FailureURL            string `json:"failure_url" form:"failure_url" validate:"omitempty,redirect"`
}
