package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	settingsRepo "consultdesk/database/repository/settings"
	sponsorRepo "consultdesk/database/repository/sponsor"
	transactionRepo "consultdesk/database/repository/transaction"
	"consultdesk/models"
	"consultdesk/services/coupon"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// GatewayConfig is the environment fallback for gateway settings, resolved
// after the tenant settings record.
type GatewayConfig struct {
	MerchantID   string
	BaseURL      string
	CallbackURLs map[models.TransactionKind]string
	Descriptions map[models.TransactionKind]string
	CalendarID   string
}

// gatewayStatusOK is the literal the gateway sends back on a completed payment.
const gatewayStatusOK = "OK"

// reconcileDelay is how long after initiation a stale pending transaction is
// re-verified in case the callback never arrived.
const reconcileDelay = 30 * time.Minute

// callbackParams maps each kind to its callback query parameter.
var callbackParams = map[models.TransactionKind]string{
	models.KindBooking:  "bookingId",
	models.KindOrder:    "orderId",
	models.KindDonation: "donationId",
}

// DefaultPaymentService is the concrete PaymentService.
type DefaultPaymentService struct {
	Repo       transactionRepo.TransactionRepository
	Sponsors   sponsorRepo.SponsorRepository
	Settings   settingsRepo.SettingsRepository
	Coupons    coupon.Engine
	Gateway    Gateway
	Calendar   EventCanceler
	Reconciler VerifyScheduler
	Locks      *redis.Client
	Fallback   GatewayConfig
	Logger     *zap.Logger
}

// gatewayConfig resolves merchant id and base URL: settings record first,
// then environment fallback. Failing both is a precondition error raised
// before any gateway I/O.
func (s *DefaultPaymentService) gatewayConfig() (string, string, error) {
	merchantID := s.Fallback.MerchantID
	baseURL := s.Fallback.BaseURL
	if s.Settings != nil {
		settings, err := s.Settings.Get()
		if err != nil {
			return "", "", err
		}
		if settings != nil {
			if settings.MerchantID != "" {
				merchantID = settings.MerchantID
			}
			if settings.BaseURL != "" {
				baseURL = settings.BaseURL
			}
		}
	}
	if merchantID == "" {
		return "", "", fmt.Errorf("%w: no merchant id in settings or environment", ErrMissingConfiguration)
	}
	if baseURL == "" {
		return "", "", fmt.Errorf("%w: no base URL in settings or environment", ErrMissingConfiguration)
	}
	return merchantID, baseURL, nil
}

// calendarID resolves the calendar used for meeting cancellation.
func (s *DefaultPaymentService) calendarID() string {
	if s.Settings != nil {
		if settings, err := s.Settings.Get(); err == nil && settings != nil && settings.PrimaryCalendarID != "" {
			return settings.PrimaryCalendarID
		}
	}
	return s.Fallback.CalendarID
}

func (s *DefaultPaymentService) callbackFor(kind models.TransactionKind, id string) (string, error) {
	base := s.Fallback.CallbackURLs[kind]
	if base == "" {
		return "", fmt.Errorf("%w: no callback URL for %s payments", ErrMissingConfiguration, kind)
	}
	return fmt.Sprintf("%s?%s=%s", base, callbackParams[kind], id), nil
}

// submit creates the pending record, requests payment and persists the
// authority. The transaction is created before the gateway call so a failed
// request leaves an auditable "Payment initiated" record, like any payment
// the payer abandons.
func (s *DefaultPaymentService) submit(ctx context.Context, tx *models.Transaction, metadata map[string]string) (*InitiateResult, error) {
	merchantID, baseURL, err := s.gatewayConfig()
	if err != nil {
		return nil, err
	}
	callbackURL, err := s.callbackFor(tx.Kind, tx.ID)
	if err != nil {
		return nil, err
	}

	tx.Status = models.StatusPaymentInitiated
	tx.Message = "Payment initiated"
	if err := s.Repo.Create(tx); err != nil {
		return nil, err
	}

	authority, err := s.Gateway.RequestPayment(ctx, GatewayRequest{
		MerchantID:  merchantID,
		BaseURL:     baseURL,
		AmountRials: Rials(tx.Amount),
		CallbackURL: callbackURL,
		Description: s.Fallback.Descriptions[tx.Kind],
		Metadata:    metadata,
	})
	if err != nil {
		s.Logger.Error("payment request failed",
			zap.String("kind", string(tx.Kind)), zap.String("id", tx.ID), zap.Error(err))
		return nil, err
	}

	if err := s.Repo.SetFields(tx.Kind, tx.ID, bson.M{
		"authority": authority,
		"message":   fmt.Sprintf("Payment initiated (code: %d)", gatewayOKCode),
	}); err != nil {
		return nil, err
	}

	if s.Reconciler != nil {
		if err := s.Reconciler.ScheduleVerify(tx.Kind, tx.ID, authority, reconcileDelay); err != nil {
			s.Logger.Warn("failed to schedule payment reconciliation",
				zap.String("id", tx.ID), zap.Error(err))
		}
	}

	return &InitiateResult{
		TransactionID: tx.ID,
		PaymentURL:    PaymentURL(baseURL, authority),
	}, nil
}

// InitiateBooking prices and submits a consulting booking payment.
func (s *DefaultPaymentService) InitiateBooking(ctx context.Context, in BookingInput) (*InitiateResult, error) {
	amount := in.Amount
	var couponID string
	if in.CouponCode != "" {
		c, err := s.Coupons.Validate(ctx, in.CouponCode, models.ScopeBookings, in.Amount, time.Now())
		if err != nil {
			return nil, err
		}
		amount = coupon.FinalPrice(c, in.Amount)
		couponID = c.ID
	}

	tx := &models.Transaction{
		ID:       uuid.New().String(),
		Kind:     models.KindBooking,
		Amount:   amount,
		CouponID: couponID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Hours:    in.Hours,
		Comment:  in.Comment,
	}
	return s.submit(ctx, tx, map[string]string{
		"booking_id": tx.ID,
		"comment":    in.Comment,
	})
}

// InitiateOrder resolves the sponsor, prices and submits a sponsorship order.
func (s *DefaultPaymentService) InitiateOrder(ctx context.Context, in OrderInput) (*InitiateResult, error) {
	sponsorID, err := s.resolveSponsor(in)
	if err != nil {
		return nil, err
	}

	amount := in.Amount
	var couponID string
	if in.CouponCode != "" {
		c, err := s.Coupons.Validate(ctx, in.CouponCode, models.ScopeOrders, in.Amount, time.Now())
		if err != nil {
			return nil, err
		}
		amount = coupon.FinalPrice(c, in.Amount)
		couponID = c.ID
	}

	tx := &models.Transaction{
		ID:           uuid.New().String(),
		Kind:         models.KindOrder,
		Amount:       amount,
		CouponID:     couponID,
		PackageID:    in.PackageID,
		Price:        in.Price,
		Quantity:     in.Quantity,
		Note:         in.Note,
		InternalNote: in.InternalNote,
		SponsorID:    sponsorID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
	}
	return s.submit(ctx, tx, map[string]string{
		"order_id":   tx.ID,
		"package_id": in.PackageID,
	})
}

// InitiateDonation submits a donation payment. No coupon applies.
func (s *DefaultPaymentService) InitiateDonation(ctx context.Context, in DonationInput) (*InitiateResult, error) {
	tx := &models.Transaction{
		ID:     uuid.New().String(),
		Kind:   models.KindDonation,
		Amount: in.Amount,
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Mobile,
	}
	return s.submit(ctx, tx, map[string]string{
		"email":  in.Email,
		"mobile": in.Mobile,
	})
}

// resolveSponsor finds or creates the sponsor behind an order: explicit id,
// then lookup by email, then creation from the contact fields.
func (s *DefaultPaymentService) resolveSponsor(in OrderInput) (string, error) {
	if in.SponsorID != "" {
		return in.SponsorID, nil
	}
	if in.Email == "" {
		return "", errors.New("missing sponsor email: cannot lookup or create sponsor without email")
	}
	existing, err := s.Sponsors.GetByEmail(in.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	if in.Name == "" || in.Phone == "" {
		return "", errors.New("missing sponsor details: name and phone are required to create a new sponsor")
	}
	sponsor := &models.Sponsor{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		CompanyName:    in.CompanyName,
		CompanyWebsite: in.CompanyWebsite,
		InstagramID:    in.InstagramID,
		Note:           in.Note,
		InternalNote:   in.InternalNote,
	}
	if err := s.Sponsors.Create(sponsor); err != nil {
		return "", err
	}
	return sponsor.ID, nil
}

// Verify applies a gateway callback exactly once. Gateways deliver callbacks
// more than once, so a resolved transaction short-circuits to its recorded
// outcome; the status compare-and-set is the sole side-effect gate.
func (s *DefaultPaymentService) Verify(ctx context.Context, kind models.TransactionKind, id, authority, statusParam string) (*VerifyResult, error) {
	unlock := s.lock(ctx, kind, id)
	defer unlock()

	tx, err := s.Repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if tx.Status.Resolved() {
		return &VerifyResult{Success: tx.Status.Succeeded(), Transaction: tx}, nil
	}

	// Payer cancelled or the gateway reported failure before settlement; no
	// need to contact the gateway.
	if statusParam != gatewayStatusOK {
		return s.markFailed(kind, id, fmt.Sprintf("Payment was not completed (Status: %s)", statusParam))
	}

	if authority == "" {
		authority = tx.Authority
	}
	if authority == "" {
		return nil, ErrMissingAuthority
	}

	merchantID, baseURL, err := s.gatewayConfig()
	if err != nil {
		return nil, err
	}

	// Amount comes from the persisted record, never the callback.
	refID, err := s.Gateway.VerifyPayment(ctx, GatewayVerify{
		MerchantID:  merchantID,
		BaseURL:     baseURL,
		AmountRials: Rials(tx.Amount),
		Authority:   authority,
	})
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			return s.markFailed(kind, id, fmt.Sprintf("Payment failed (code: %d)", gwErr.Code))
		}
		// Transport failure: indeterminate, leave the transaction pending for
		// a retried verification.
		return nil, err
	}

	won, err := s.Repo.Transition(kind, id, models.StatusPaymentInitiated, models.StatusPaymentSuccessful, bson.M{
		"transactionRef": refID,
		"message":        "Payment successful",
	})
	if err != nil {
		return nil, err
	}
	if won && tx.CouponID != "" {
		if err := s.Coupons.CommitUsage(ctx, tx.CouponID); err != nil {
			s.Logger.Error("failed to commit coupon usage",
				zap.String("couponId", tx.CouponID), zap.String("id", id), zap.Error(err))
		}
	}
	if !won {
		s.Logger.Info("verification lost the status race, returning recorded outcome",
			zap.String("kind", string(kind)), zap.String("id", id))
	}

	final, err := s.Repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Success: final.Status.Succeeded(), Transaction: final}, nil
}

func (s *DefaultPaymentService) markFailed(kind models.TransactionKind, id, message string) (*VerifyResult, error) {
	if _, err := s.Repo.Transition(kind, id, models.StatusPaymentInitiated, models.StatusPaymentFailed, bson.M{
		"message": message,
	}); err != nil {
		return nil, err
	}
	tx, err := s.Repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Success: tx.Status.Succeeded(), Transaction: tx}, nil
}

// Refund moves a paid transaction to "Payment Refunded". For bookings with a
// scheduled meeting the external event is cancelled best-effort and the
// meeting fields are cleared regardless of the cancellation outcome.
func (s *DefaultPaymentService) Refund(ctx context.Context, kind models.TransactionKind, id string) (*models.Transaction, error) {
	tx, err := s.Repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}

	directive, err := Allow(kind, tx.Status, models.StatusPaymentRefunded)
	if err != nil {
		return nil, err
	}
	if tx.Status == models.StatusPaymentRefunded {
		return tx, nil
	}

	won, err := s.Repo.Transition(kind, id, tx.Status, models.StatusPaymentRefunded, bson.M{
		"message": "Payment Refunded",
	})
	if err != nil {
		return nil, err
	}
	if !won {
		// Another writer changed the status underneath us; re-evaluate.
		return s.Refund(ctx, kind, id)
	}

	if directive.CancelEvent && tx.EventID != "" && s.Calendar != nil {
		if err := s.Calendar.DeleteEvent(ctx, s.calendarID(), tx.EventID); err != nil {
			s.Logger.Warn("failed to cancel calendar event during refund",
				zap.String("eventId", tx.EventID), zap.String("id", id), zap.Error(err))
		}
	}
	if directive.ClearMeeting {
		if err := s.Repo.SetFields(kind, id, bson.M{
			"meetingUrl":       "",
			"meetingStartDate": "",
			"meetingStartTime": "",
			"meetingEndDate":   "",
			"meetingEndTime":   "",
			"eventId":          "",
		}); err != nil {
			return nil, err
		}
	}

	return s.Repo.GetByID(kind, id)
}

// GetTransaction fetches one transaction record.
func (s *DefaultPaymentService) GetTransaction(ctx context.Context, kind models.TransactionKind, id string) (*models.Transaction, error) {
	tx, err := s.Repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// lock serializes verification per transaction id. Redis going away only
// costs the serialization of gateway calls; the status compare-and-set still
// prevents double-applied side effects.
func (s *DefaultPaymentService) lock(ctx context.Context, kind models.TransactionKind, id string) func() {
	if s.Locks == nil {
		return func() {}
	}
	key := fmt.Sprintf("verify:%s:%s", kind, id)
	for attempt := 0; attempt < 25; attempt++ {
		ok, err := s.Locks.SetNX(ctx, key, "1", 30*time.Second).Result()
		if err != nil {
			s.Logger.Warn("verify lock unavailable", zap.String("key", key), zap.Error(err))
			return func() {}
		}
		if ok {
			return func() { s.Locks.Del(context.Background(), key) }
		}
		time.Sleep(200 * time.Millisecond)
	}
	return func() {}
}
