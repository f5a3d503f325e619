package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/models"
	"github.com/ThousifMd/MatchlensAI/store"
	"github.com/ThousifMd/MatchlensAI/utils"
)

func TestAdminLogin(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "ops")
	t.Setenv("ADMIN_PASSWORD", "hunter2-but-longer")
	t.Setenv("ADMIN_JWT_SECRET", "test-secret-for-admin-tokens")

	c := NewAdminController(store.NewMemoryStore(), zap.NewNop())

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "http://example.local/v1/admin/login", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		c.Login(rec, req)
		return rec
	}

	rec := login(`{"username":"ops","password":"hunter2-but-longer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	token := resp.Data["token"]
	if token == "" {
		t.Fatal("expected a token in the login response")
	}
	if _, err := utils.ValidateAdminToken(token); err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}

	if rec := login(`{"username":"ops","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
	if rec := login(`{"username":"someone","password":"hunter2-but-longer"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad username, got %d", rec.Code)
	}
}

func TestAdminLogin_Unconfigured(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")

	c := NewAdminController(store.NewMemoryStore(), zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "http://example.local/v1/admin/login",
		bytes.NewBufferString(`{"username":"ops","password":"x"}`))
	rec := httptest.NewRecorder()
	c.Login(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when credentials unset, got %d", rec.Code)
	}
}

func TestAdminUpdatePaymentStatus(t *testing.T) {
	st := store.NewMemoryStore()
	_, paymentID := seedSubmission(t, st, "ORDER-ADM", "admin-target@example.com", time.Now())
	c := NewAdminController(st, zap.NewNop())

	update := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "http://example.local/v1/admin/payments/"+id+"/status",
			bytes.NewBufferString(body))
		req = mux.SetURLVars(req, map[string]string{"paymentID": id})
		rec := httptest.NewRecorder()
		c.UpdatePaymentStatus(rec, req)
		return rec
	}

	// completed -> refunded is the supported operator action.
	rec := update(paymentID, `{"status":"refunded"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.PaymentRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Status != models.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", resp.Data.Status)
	}

	// refunded is terminal.
	rec = update(paymentID, `{"status":"completed"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for disallowed transition, got %d", rec.Code)
	}

	// Unknown status string never reaches the store.
	rec = update(paymentID, `{"status":"definitely-not-a-status"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}

	// Unknown payment id.
	rec = update("missing-id", `{"status":"refunded"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown payment, got %d", rec.Code)
	}
}
