package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/cache"
	"github.com/ThousifMd/MatchlensAI/models"
	"github.com/ThousifMd/MatchlensAI/paypal"
	"github.com/ThousifMd/MatchlensAI/store"
	"github.com/ThousifMd/MatchlensAI/utils"
)

const (
	photoFolder      = "matchlens/photos"
	screenshotFolder = "matchlens/screenshots"
)

// PaymentVerifier is the slice of the PayPal client the intake path needs.
type PaymentVerifier interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, description, referenceID string) (orderID, approveURL string, err error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
}

// PhotoUploader uploads a photo collection best-effort and returns the URLs
// that made it.
type PhotoUploader interface {
	UploadBatch(ctx context.Context, payloads []string, folder string) []string
}

// IntakeController owns the payment-gated submission workflow.
type IntakeController struct {
	store    store.SubmissionStore
	verifier PaymentVerifier
	uploads  PhotoUploader
	receipts *cache.ReceiptCache
	logger   *zap.Logger

	// verifyCapture re-confirms the claimed order with PayPal before any
	// write. Off for the legacy path that trusts the client's status claim.
	verifyCapture bool
}

func NewIntakeController(
	st store.SubmissionStore,
	verifier PaymentVerifier,
	uploads PhotoUploader,
	receipts *cache.ReceiptCache,
	logger *zap.Logger,
	verifyCapture bool,
) *IntakeController {
	return &IntakeController{
		store:         st,
		verifier:      verifier,
		uploads:       uploads,
		receipts:      receipts,
		logger:        logger,
		verifyCapture: verifyCapture,
	}
}

// ProfilePayload is the questionnaire embedded in the composite request.
type ProfilePayload struct {
	Name             string   `json:"name"`
	Age              int      `json:"age"`
	DatingGoal       string   `json:"datingGoal"`
	CurrentMatches   string   `json:"currentMatches"`
	BodyType         string   `json:"bodyType"`
	StylePreference  string   `json:"stylePreference"`
	Ethnicity        string   `json:"ethnicity"`
	Bio              string   `json:"bio"`
	Interests        []string `json:"interests"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	WeeklyTips       bool     `json:"weeklyTips"`
	Photos           []string `json:"photos"`
	ScreenshotPhotos []string `json:"screenshotPhotos"`
}

// StorePaymentProfileRequest is the single composite call: payment fields plus
// the embedded profile payload with raw photo data.
type StorePaymentProfileRequest struct {
	OrderID       string          `json:"orderId"`
	PaymentID     string          `json:"paymentId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PackageID     string          `json:"packageId"`
	PackageName   string          `json:"packageName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	ProfileData   ProfilePayload  `json:"profileData"`
}

// Receipt identifies the committed rows for one order.
type Receipt struct {
	UserID    string `json:"userId"`
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
}

// validate checks every precondition that can be checked without I/O. It runs
// before the payment gate and before any external call.
func (req *StorePaymentProfileRequest) validate() string {
	if strings.TrimSpace(req.OrderID) == "" {
		return "orderId is required"
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		return "paymentId is required"
	}
	if !req.Amount.IsPositive() {
		return "amount must be a positive number"
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if !models.InEnum(req.Currency, models.Currencies) {
		return "currency is not supported"
	}
	if req.CustomerEmail == "" {
		return "customerEmail is required"
	}
	if !utils.IsValidEmail(req.CustomerEmail) {
		return "customerEmail must be a valid email address"
	}
	if !models.InEnum(req.Status, models.PaymentStatuses) {
		return "status is not a recognized payment status"
	}

	p := &req.ProfileData
	if strings.TrimSpace(p.Name) == "" {
		return "profileData.name is required"
	}
	if !utils.IsValidEmail(p.Email) {
		return "profileData.email must be a valid email address"
	}
	if p.Age < models.MinAge || p.Age > models.MaxAge {
		return "profileData.age is out of range"
	}
	if !models.InEnum(p.DatingGoal, models.DatingGoals) {
		return "profileData.datingGoal is not a recognized option"
	}
	if !models.InEnum(p.CurrentMatches, models.MatchCountBuckets) {
		return "profileData.currentMatches is not a recognized option"
	}
	if !models.InEnum(p.BodyType, models.BodyTypes) {
		return "profileData.bodyType is not a recognized option"
	}
	if !models.InEnum(p.StylePreference, models.StylePreferences) {
		return "profileData.stylePreference is not a recognized option"
	}
	if !models.InEnum(p.Ethnicity, models.Ethnicities) {
		return "profileData.ethnicity is not a recognized option"
	}
	if len(p.Interests) < 1 || len(p.Interests) > models.MaxInterests {
		return "profileData.interests must contain between 1 and 10 entries"
	}
	if len(p.Bio) > models.MaxBioLength {
		return "profileData.bio is too long"
	}
	return ""
}

// StorePaymentProfile handles POST /store-payment-profile. Order of work:
// validate, gate on payment status, optionally verify the capture with PayPal,
// upload both photo collections best-effort, then commit profile + payment in
// one transaction and return the receipt.
func (c *IntakeController) StorePaymentProfile(w http.ResponseWriter, r *http.Request) {
	var req StorePaymentProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid JSON body")
		return
	}

	if msg := req.validate(); msg != "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodeValidation, msg)
		return
	}

	// Hard gate: nothing is persisted for a payment that is not confirmed
	// complete.
	if req.Status != models.PaymentStatusCompleted {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrCodePaymentNotCompleted,
			"payment status must be completed before submission is stored")
		return
	}

	// The client going away must not abort a workflow that is about to
	// commit; from here on only internal outcomes decide success.
	ctx := context.WithoutCancel(r.Context())

	captureID := req.PaymentID
	if c.verifyCapture {
		res, err := c.verifier.CaptureOrder(ctx, req.OrderID)
		if err != nil {
			c.logger.Error("paypal verification failed",
				zap.String("order_id", req.OrderID),
				zap.Bool("auth_error", paypal.IsAuthError(err)),
				zap.Error(err))
			utils.WriteError(w, http.StatusBadGateway, utils.ErrCodeUpstreamVerification,
				"could not verify payment with the payment processor")
			return
		}
		if res.Status != paypal.OrderStatusCompleted {
			utils.WriteError(w, http.StatusBadGateway, utils.ErrCodeUpstreamVerification,
				"payment processor does not report this order as captured")
			return
		}
		if !res.Amount.IsZero() && !res.Amount.Equal(req.Amount) {
			c.logger.Error("captured amount disagrees with claim",
				zap.String("order_id", req.OrderID),
				zap.String("claimed", req.Amount.String()),
				zap.String("captured", res.Amount.String()))
			utils.WriteError(w, http.StatusBadGateway, utils.ErrCodeUpstreamVerification,
				"captured amount does not match the submitted amount")
			return
		}
		if res.CaptureID != "" {
			captureID = res.CaptureID
		}
	}

	// The two collections are independent; upload them concurrently. Either
	// collection failing entirely degrades to an empty URL list, it never
	// blocks the commit.
	var (
		wg             sync.WaitGroup
		photoURLs      []string
		screenshotURLs []string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		photoURLs = c.uploads.UploadBatch(ctx, req.ProfileData.Photos, photoFolder)
	}()
	go func() {
		defer wg.Done()
		screenshotURLs = c.uploads.UploadBatch(ctx, req.ProfileData.ScreenshotPhotos, screenshotFolder)
	}()
	wg.Wait()

	if len(photoURLs) < len(req.ProfileData.Photos) || len(screenshotURLs) < len(req.ProfileData.ScreenshotPhotos) {
		c.logger.Warn("photo upload degraded, committing with fewer URLs",
			zap.String("order_id", req.OrderID),
			zap.Int("photos_submitted", len(req.ProfileData.Photos)),
			zap.Int("photos_stored", len(photoURLs)),
			zap.Int("screenshots_submitted", len(req.ProfileData.ScreenshotPhotos)),
			zap.Int("screenshots_stored", len(screenshotURLs)))
	}

	sub := models.ProfileSubmission{
		Name:             strings.TrimSpace(req.ProfileData.Name),
		Age:              req.ProfileData.Age,
		DatingGoal:       req.ProfileData.DatingGoal,
		CurrentMatches:   req.ProfileData.CurrentMatches,
		BodyType:         req.ProfileData.BodyType,
		StylePreference:  req.ProfileData.StylePreference,
		Ethnicity:        req.ProfileData.Ethnicity,
		Bio:              req.ProfileData.Bio,
		Interests:        req.ProfileData.Interests,
		Email:            strings.ToLower(strings.TrimSpace(req.ProfileData.Email)),
		WeeklyTips:       req.ProfileData.WeeklyTips,
		OriginalPhotos:   photoURLs,
		ScreenshotPhotos: screenshotURLs,
	}
	if phone := strings.TrimSpace(req.ProfileData.Phone); phone != "" {
		sub.Phone = &phone
	}

	pay := models.PaymentRecord{
		OrderID:       req.OrderID,
		CaptureID:     captureID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PackageID:     req.PackageID,
		PackageName:   req.PackageName,
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerName:  req.CustomerName,
		Status:        req.Status,
	}

	if err := c.store.CreateWithPayment(ctx, &sub, &pay); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateOrder):
			c.respondDuplicateOrder(ctx, w, req.OrderID)
		case errors.Is(err, store.ErrDuplicateEmail):
			utils.WriteError(w, http.StatusConflict, utils.ErrCodeDuplicateEmail,
				"a profile already exists for this email address")
		default:
			c.logger.Error("submission commit failed",
				zap.String("order_id", req.OrderID),
				zap.Error(err))
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrCodeStorage,
				"could not store the submission, please retry")
		}
		return
	}

	receipt := Receipt{UserID: sub.UserID, PaymentID: pay.PaymentID, OrderID: pay.OrderID}
	c.receipts.Store(ctx, req.OrderID, receipt)

	c.logger.Info("submission stored",
		zap.String("order_id", pay.OrderID),
		zap.String("user_id", sub.UserID),
		zap.String("payment_id", pay.PaymentID))

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Payment and profile stored",
		Data:    receipt,
	})
}

// respondDuplicateOrder answers a retried order with a conflict plus the
// original receipt when it can still be found.
func (c *IntakeController) respondDuplicateOrder(ctx context.Context, w http.ResponseWriter, orderID string) {
	var receipt Receipt
	found := c.receipts.Get(ctx, orderID, &receipt)
	if !found {
		if pay, err := c.store.GetPaymentByOrderID(ctx, orderID); err == nil {
			receipt = Receipt{UserID: pay.UserID, PaymentID: pay.PaymentID, OrderID: pay.OrderID}
			found = true
		}
	}

	resp := utils.APIResponse{
		Success: false,
		Error:   utils.ErrCodeDuplicateOrder,
		Message: "this order was already processed",
	}
	if found {
		resp.Data = receipt
	}
	utils.WriteJSON(w, http.StatusConflict, resp)
}
