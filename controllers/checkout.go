package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/models"
	"github.com/ThousifMd/MatchlensAI/utils"
)

// CreateOrderRequest starts a PayPal checkout for a package. This happens
// before the client pays; the commit path never calls it.
type CreateOrderRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PackageID   string          `json:"packageId"`
	PackageName string          `json:"packageName"`
}

// CreatePayPalOrder handles POST /paypal/create-order.
func (c *IntakeController) CreatePayPalOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid JSON body")
		return
	}
	if !req.Amount.IsPositive() {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "amount must be a positive number")
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if !models.InEnum(req.Currency, models.Currencies) {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "currency is not supported")
		return
	}

	description := req.PackageName
	if description == "" {
		description = "Matchlens profile package"
	}

	orderID, approveURL, err := c.verifier.CreateOrder(r.Context(), req.Amount, req.Currency, description, req.PackageID)
	if err != nil {
		c.logger.Error("paypal create-order failed", zap.String("package_id", req.PackageID), zap.Error(err))
		utils.WriteError(w, http.StatusBadGateway, utils.ErrCodeUpstreamVerification,
			"could not create the order with the payment processor")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Order created",
		Data: map[string]string{
			"orderId":    orderID,
			"approveUrl": approveURL,
		},
	})
}
