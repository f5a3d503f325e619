package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/models"
	"github.com/ThousifMd/MatchlensAI/store"
	"github.com/ThousifMd/MatchlensAI/utils"
)

func seedSubmission(t *testing.T, st *store.MemoryStore, orderID, email string, createdAt time.Time) (userID, paymentID string) {
	t.Helper()
	sub := models.ProfileSubmission{
		Name:            "Seeded User",
		Age:             30,
		DatingGoal:      "marriage",
		CurrentMatches:  "none",
		BodyType:        "average",
		StylePreference: "casual",
		Ethnicity:       "other",
		Interests:       []string{"reading"},
		Email:           email,
		CreatedAt:       createdAt,
	}
	pay := models.PaymentRecord{
		OrderID:       orderID,
		CaptureID:     "CAP-" + orderID,
		Amount:        decimal.NewFromInt(49),
		Currency:      "USD",
		CustomerEmail: email,
		Status:        models.PaymentStatusCompleted,
	}
	if err := st.CreateWithPayment(context.Background(), &sub, &pay); err != nil {
		t.Fatalf("seed %s: %v", orderID, err)
	}
	return sub.UserID, pay.PaymentID
}

func TestReadController_PaymentLookups(t *testing.T) {
	st := store.NewMemoryStore()
	_, paymentID := seedSubmission(t, st, "ORDER-R1", "reader@example.com", time.Now())
	c := NewReadController(st, zap.NewNop())

	// By order id.
	req := httptest.NewRequest(http.MethodGet, "http://example.local/v1/payments/order/ORDER-R1", nil)
	req = mux.SetURLVars(req, map[string]string{"orderID": "ORDER-R1"})
	rec := httptest.NewRecorder()
	c.GetPaymentByOrderID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// By payment id.
	req = httptest.NewRequest(http.MethodGet, "http://example.local/v1/payments/"+paymentID, nil)
	req = mux.SetURLVars(req, map[string]string{"paymentID": paymentID})
	rec = httptest.NewRecorder()
	c.GetPaymentByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Unknown order id is a 404 with the not-found code, not a 500.
	req = httptest.NewRequest(http.MethodGet, "http://example.local/v1/payments/order/NOPE", nil)
	req = mux.SetURLVars(req, map[string]string{"orderID": "NOPE"})
	rec = httptest.NewRecorder()
	c.GetPaymentByOrderID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp utils.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != utils.ErrCodeNotFound {
		t.Fatalf("expected %s, got %q", utils.ErrCodeNotFound, resp.Error)
	}
}

func TestReadController_GetProfileIncludesPayments(t *testing.T) {
	st := store.NewMemoryStore()
	userID, _ := seedSubmission(t, st, "ORDER-R2", "profile@example.com", time.Now())
	c := NewReadController(st, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "http://example.local/v1/profiles/"+userID, nil)
	req = mux.SetURLVars(req, map[string]string{"userID": userID})
	rec := httptest.NewRecorder()
	c.GetProfile(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                     `json:"success"`
		Data    models.ProfileSubmission `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Payments) != 1 {
		t.Fatalf("expected joined payment rows, got %d", len(resp.Data.Payments))
	}
	if resp.Data.Payments[0].OrderID != "ORDER-R2" {
		t.Fatalf("unexpected payment joined: %+v", resp.Data.Payments[0])
	}
}

func TestReadController_ListSubmissionsPaginates(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		seedSubmission(t, st,
			fmt.Sprintf("ORDER-L%d", i),
			fmt.Sprintf("user%d@example.com", i),
			base.Add(time.Duration(i)*time.Minute))
	}
	c := NewReadController(st, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "http://example.local/v1/admin/submissions?page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	c.ListSubmissions(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Submissions []models.ProfileSubmission `json:"submissions"`
			Total       int64                      `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 25 {
		t.Fatalf("expected total 25, got %d", resp.Data.Total)
	}
	if len(resp.Data.Submissions) != 10 {
		t.Fatalf("expected 10 rows on page 1, got %d", len(resp.Data.Submissions))
	}
	// Newest first.
	if resp.Data.Submissions[0].Email != "user24@example.com" {
		t.Fatalf("expected newest submission first, got %s", resp.Data.Submissions[0].Email)
	}

	// A second page continues where the first stopped.
	req = httptest.NewRequest(http.MethodGet, "http://example.local/v1/admin/submissions?page=3&limit=10", nil)
	rec = httptest.NewRecorder()
	c.ListSubmissions(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode page 3: %v", err)
	}
	if len(resp.Data.Submissions) != 5 {
		t.Fatalf("expected 5 rows on page 3, got %d", len(resp.Data.Submissions))
	}
}
