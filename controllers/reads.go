package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/store"
	"github.com/ThousifMd/MatchlensAI/utils"
)

// ReadController serves the lookup and listing endpoints, plain projections
// over the submission store.
type ReadController struct {
	store  store.SubmissionStore
	logger *zap.Logger
}

func NewReadController(st store.SubmissionStore, logger *zap.Logger) *ReadController {
	return &ReadController{store: st, logger: logger}
}

// GetPaymentByOrderID handles GET /payments/order/{orderID}.
func (c *ReadController) GetPaymentByOrderID(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderID"]
	pay, err := c.store.GetPaymentByOrderID(r.Context(), orderID)
	if err != nil {
		c.writeLookupError(w, err, "no payment found for this order id")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: pay})
}

// GetPaymentByID handles GET /payments/{paymentID}.
func (c *ReadController) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["paymentID"]
	pay, err := c.store.GetPaymentByID(r.Context(), paymentID)
	if err != nil {
		c.writeLookupError(w, err, "no payment found for this payment id")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: pay})
}

// GetProfile handles GET /profiles/{userID}, returning the submission joined
// with its payment rows.
func (c *ReadController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	sub, err := c.store.GetProfile(r.Context(), userID)
	if err != nil {
		c.writeLookupError(w, err, "no profile found for this user id")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: sub})
}

// ListSubmissions handles GET /admin/submissions?page=&limit=. Newest first,
// page size capped by the store.
func (c *ReadController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	subs, total, err := c.store.ListSubmissions(r.Context(), store.ListOptions{Page: page, Limit: limit})
	if err != nil {
		c.logger.Error("submission listing failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrCodeStorage, "could not list submissions")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"submissions": subs,
			"total":       total,
		},
	})
}

func (c *ReadController) writeLookupError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, utils.ErrCodeNotFound, notFoundMsg)
		return
	}
	c.logger.Error("lookup failed", zap.Error(err))
	utils.WriteError(w, http.StatusInternalServerError, utils.ErrCodeStorage, "lookup failed, please retry")
}
