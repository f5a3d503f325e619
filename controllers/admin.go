package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/models"
	"github.com/ThousifMd/MatchlensAI/store"
	"github.com/ThousifMd/MatchlensAI/utils"
)

// AdminController covers the small operator surface: login and payment status
// corrections (refunds).
type AdminController struct {
	store  store.SubmissionStore
	logger *zap.Logger
}

func NewAdminController(st store.SubmissionStore, logger *zap.Logger) *AdminController {
	return &AdminController{store: st, logger: logger}
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required,nameok"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /admin/login, checking credentials from the environment
// and issuing a JWT for the admin routes.
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid JSON body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error())
		return
	}

	wantUser := os.Getenv("ADMIN_USERNAME")
	wantPass := os.Getenv("ADMIN_PASSWORD")
	if wantUser == "" || wantPass == "" {
		c.logger.Error("admin credentials not configured")
		utils.WriteError(w, http.StatusServiceUnavailable, utils.ErrCodeUnauthorized, "admin login is not configured")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(wantPass)) == 1
	if !userOK || !passOK {
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "invalid username or password")
		return
	}

	token, err := utils.GenerateAdminToken(req.Username)
	if err != nil {
		c.logger.Error("admin token generation failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrCodeStorage, "could not create session token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Logged in",
		Data:    map[string]string{"token": token},
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentStatus handles PUT /admin/payments/{paymentID}/status. Only the
// transitions in the payment state machine are allowed; in practice this is
// the completed -> refunded path.
func (c *AdminController) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["paymentID"]

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid JSON body")
		return
	}
	if !models.InEnum(req.Status, models.PaymentStatuses) {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "status is not a recognized payment status")
		return
	}

	pay, err := c.store.UpdatePaymentStatus(r.Context(), paymentID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.WriteError(w, http.StatusNotFound, utils.ErrCodeNotFound, "no payment found for this payment id")
		case errors.Is(err, store.ErrInvalidTransition):
			utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation,
				"this status transition is not allowed")
		default:
			c.logger.Error("payment status update failed", zap.String("payment_id", paymentID), zap.Error(err))
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrCodeStorage, "could not update payment status")
		}
		return
	}

	c.logger.Info("payment status updated",
		zap.String("payment_id", pay.PaymentID),
		zap.String("status", pay.Status))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status updated", Data: pay})
}
