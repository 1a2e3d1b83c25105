package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"consultdesk/models"
)

// fakeTransactionRepo is an in-memory TransactionRepository with the same
// compare-and-set semantics as the Mongo implementation.
type fakeTransactionRepo struct {
	records map[string]*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{records: make(map[string]*models.Transaction)}
}

func key(kind models.TransactionKind, id string) string {
	return string(kind) + "/" + id
}

func (r *fakeTransactionRepo) Create(tx *models.Transaction) error {
	cp := *tx
	r.records[key(tx.Kind, tx.ID)] = &cp
	return nil
}

func (r *fakeTransactionRepo) GetByID(kind models.TransactionKind, id string) (*models.Transaction, error) {
	tx, ok := r.records[key(kind, id)]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTransactionRepo) GetByAuthority(kind models.TransactionKind, authority string) (*models.Transaction, error) {
	for _, tx := range r.records {
		if tx.Kind == kind && tx.Authority == authority {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) SetFields(kind models.TransactionKind, id string, fields bson.M) error {
	tx, ok := r.records[key(kind, id)]
	if !ok {
		return fmt.Errorf("no record %s/%s", kind, id)
	}
	applyFields(tx, fields)
	return nil
}

func (r *fakeTransactionRepo) Transition(kind models.TransactionKind, id string, from, to models.TransactionStatus, set bson.M) (bool, error) {
	tx, ok := r.records[key(kind, id)]
	if !ok || tx.Status != from {
		return false, nil
	}
	tx.Status = to
	applyFields(tx, set)
	return true, nil
}

func applyFields(tx *models.Transaction, fields bson.M) {
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "authority":
			tx.Authority = s
		case "transactionRef":
			tx.TransactionRef = s
		case "message":
			tx.Message = s
		case "eventId":
			tx.EventID = s
		case "meetingUrl":
			tx.MeetingURL = s
		case "meetingStartDate":
			tx.MeetingStartDate = s
		case "meetingStartTime":
			tx.MeetingStartTime = s
		case "meetingEndDate":
			tx.MeetingEndDate = s
		case "meetingEndTime":
			tx.MeetingEndTime = s
		}
	}
}

// fakeGateway counts calls and returns canned results.
type fakeGateway struct {
	authority    string
	refID        string
	requestErr   error
	verifyErr    error
	requestCalls int
	verifyCalls  int
}

func (g *fakeGateway) RequestPayment(ctx context.Context, req GatewayRequest) (string, error) {
	g.requestCalls++
	if g.requestErr != nil {
		return "", g.requestErr
	}
	return g.authority, nil
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, req GatewayVerify) (string, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return "", g.verifyErr
	}
	return g.refID, nil
}

// fakeCouponEngine records committed usages.
type fakeCouponEngine struct {
	coupon  *models.Coupon
	commits []string
}

func (e *fakeCouponEngine) Validate(ctx context.Context, code string, scope models.CouponScope, orderAmount float64, now time.Time) (*models.Coupon, error) {
	if e.coupon == nil {
		return nil, errors.New("no coupon configured")
	}
	return e.coupon, nil
}

func (e *fakeCouponEngine) CommitUsage(ctx context.Context, couponID string) error {
	e.commits = append(e.commits, couponID)
	return nil
}

type fakeSponsorRepo struct {
	byEmail map[string]*models.Sponsor
	created []*models.Sponsor
}

func (r *fakeSponsorRepo) GetByEmail(email string) (*models.Sponsor, error) {
	return r.byEmail[email], nil
}

func (r *fakeSponsorRepo) Create(sponsor *models.Sponsor) error {
	r.created = append(r.created, sponsor)
	return nil
}

type fakeCanceler struct {
	deleted []string
	err     error
}

func (c *fakeCanceler) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	c.deleted = append(c.deleted, eventID)
	return c.err
}

type fakeReconciler struct {
	scheduled []string
}

func (r *fakeReconciler) ScheduleVerify(kind models.TransactionKind, id, authority string, delay time.Duration) error {
	r.scheduled = append(r.scheduled, id)
	return nil
}

func newTestService(repo *fakeTransactionRepo, gw *fakeGateway) *DefaultPaymentService {
	return &DefaultPaymentService{
		Repo:    repo,
		Coupons: &fakeCouponEngine{},
		Gateway: gw,
		Fallback: GatewayConfig{
			MerchantID: "m-1",
			BaseURL:    "https://payment.zarinpal.com",
			CallbackURLs: map[models.TransactionKind]string{
				models.KindBooking:  "https://example.com/api/bookings/verify",
				models.KindOrder:    "https://example.com/api/orders/verify",
				models.KindDonation: "https://example.com/api/donations/verify",
			},
			Descriptions: map[models.TransactionKind]string{},
		},
		Logger: zap.NewNop(),
	}
}

func pendingBooking(repo *fakeTransactionRepo, id, couponID string) {
	repo.records[key(models.KindBooking, id)] = &models.Transaction{
		ID:        id,
		Kind:      models.KindBooking,
		Status:    models.StatusPaymentInitiated,
		Amount:    100000,
		Authority: "A-" + id,
		CouponID:  couponID,
	}
}

func TestInitiateBookingRequestsPaymentAndSchedulesReconcile(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{authority: "A-77"}
	svc := newTestService(repo, gw)
	reconciler := &fakeReconciler{}
	svc.Reconciler = reconciler

	result, err := svc.InitiateBooking(context.Background(), BookingInput{
		Name: "Sara", Email: "sara@example.com", Phone: "0912", Hours: 2, Amount: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://www.zarinpal.com/pg/StartPay/A-77", result.PaymentURL)

	tx, err := repo.GetByID(models.KindBooking, result.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, models.StatusPaymentInitiated, tx.Status)
	assert.Equal(t, "A-77", tx.Authority)
	assert.Equal(t, []string{result.TransactionID}, reconciler.scheduled)
}

func TestInitiateBookingAppliesCoupon(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{authority: "A-1"}
	svc := newTestService(repo, gw)
	svc.Coupons = &fakeCouponEngine{coupon: &models.Coupon{
		ID: "c-1", Type: models.CouponPercentage, Value: 20,
	}}

	result, err := svc.InitiateBooking(context.Background(), BookingInput{
		Name: "Sara", Email: "sara@example.com", Phone: "0912", Hours: 1,
		Amount: 100000, CouponCode: "SAVE20",
	})
	require.NoError(t, err)

	tx, _ := repo.GetByID(models.KindBooking, result.TransactionID)
	assert.Equal(t, float64(80000), tx.Amount)
	assert.Equal(t, "c-1", tx.CouponID)
}

func TestInitiateWithoutMerchantConfiguration(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	svc.Fallback.MerchantID = ""

	_, err := svc.InitiateDonation(context.Background(), DonationInput{Amount: 5000})
	assert.ErrorIs(t, err, ErrMissingConfiguration)
	assert.Empty(t, repo.records)
}

func TestVerifyIsIdempotent(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{refID: "ref-9"}
	svc := newTestService(repo, gw)
	engine := &fakeCouponEngine{}
	svc.Coupons = engine
	pendingBooking(repo, "b-1", "c-1")

	first, err := svc.Verify(context.Background(), models.KindBooking, "b-1", "A-b-1", "OK")
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, models.StatusPaymentSuccessful, first.Transaction.Status)
	assert.Equal(t, "ref-9", first.Transaction.TransactionRef)

	// A replayed callback returns the recorded outcome without another
	// gateway round trip or coupon usage.
	second, err := svc.Verify(context.Background(), models.KindBooking, "b-1", "A-b-1", "OK")
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 1, gw.verifyCalls)
	assert.Equal(t, []string{"c-1"}, engine.commits)
}

func TestVerifyCancelledSkipsGateway(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{}
	svc := newTestService(repo, gw)
	pendingBooking(repo, "b-2", "")

	result, err := svc.Verify(context.Background(), models.KindBooking, "b-2", "A-b-2", "NOK")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.StatusPaymentFailed, result.Transaction.Status)
	assert.Zero(t, gw.verifyCalls)
}

func TestVerifyGatewayRejectionMarksFailed(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{verifyErr: &GatewayError{Code: -53, Message: "authority mismatch"}}
	svc := newTestService(repo, gw)
	engine := &fakeCouponEngine{}
	svc.Coupons = engine
	pendingBooking(repo, "b-3", "c-1")

	result, err := svc.Verify(context.Background(), models.KindBooking, "b-3", "A-b-3", "OK")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.StatusPaymentFailed, result.Transaction.Status)
	assert.Empty(t, engine.commits)
}

func TestVerifyTransportFailureLeavesPending(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{verifyErr: fmt.Errorf("%w: connection refused", ErrGatewayUnavailable)}
	svc := newTestService(repo, gw)
	pendingBooking(repo, "b-4", "")

	_, err := svc.Verify(context.Background(), models.KindBooking, "b-4", "A-b-4", "OK")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	tx, _ := repo.GetByID(models.KindBooking, "b-4")
	assert.Equal(t, models.StatusPaymentInitiated, tx.Status)
}

func TestVerifyFallsBackToStoredAuthority(t *testing.T) {
	repo := newFakeTransactionRepo()
	gw := &fakeGateway{refID: "ref-1"}
	svc := newTestService(repo, gw)
	pendingBooking(repo, "b-5", "")

	result, err := svc.Verify(context.Background(), models.KindBooking, "b-5", "", "OK")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestVerifyMissingAuthority(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	repo.records[key(models.KindBooking, "b-6")] = &models.Transaction{
		ID: "b-6", Kind: models.KindBooking, Status: models.StatusPaymentInitiated,
	}

	_, err := svc.Verify(context.Background(), models.KindBooking, "b-6", "", "OK")
	assert.ErrorIs(t, err, ErrMissingAuthority)
}

func TestVerifyUnknownTransaction(t *testing.T) {
	svc := newTestService(newFakeTransactionRepo(), &fakeGateway{})
	_, err := svc.Verify(context.Background(), models.KindBooking, "nope", "A-1", "OK")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestRefundScheduledBookingClearsMeeting(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	canceler := &fakeCanceler{err: errors.New("event gone")}
	svc.Calendar = canceler
	repo.records[key(models.KindBooking, "b-7")] = &models.Transaction{
		ID: "b-7", Kind: models.KindBooking, Status: models.StatusMeetingScheduled,
		EventID: "ev-1", MeetingURL: "https://meet.google.com/abc",
		MeetingStartDate: "2026-03-02", MeetingStartTime: "10:00",
		MeetingEndDate: "2026-03-02", MeetingEndTime: "11:00",
	}

	tx, err := svc.Refund(context.Background(), models.KindBooking, "b-7")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentRefunded, tx.Status)

	// The cancellation failed, yet the refund landed and the meeting fields
	// are cleared.
	assert.Equal(t, []string{"ev-1"}, canceler.deleted)
	assert.Empty(t, tx.EventID)
	assert.Empty(t, tx.MeetingURL)
	assert.Empty(t, tx.MeetingStartDate)
	assert.Empty(t, tx.MeetingEndTime)
}

func TestRefundIsIdempotent(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	repo.records[key(models.KindOrder, "o-1")] = &models.Transaction{
		ID: "o-1", Kind: models.KindOrder, Status: models.StatusPaymentSuccessful,
	}

	first, err := svc.Refund(context.Background(), models.KindOrder, "o-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentRefunded, first.Status)

	second, err := svc.Refund(context.Background(), models.KindOrder, "o-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentRefunded, second.Status)
}

func TestRefundDonationRejected(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	repo.records[key(models.KindDonation, "d-1")] = &models.Transaction{
		ID: "d-1", Kind: models.KindDonation, Status: models.StatusPaymentSuccessful,
	}

	_, err := svc.Refund(context.Background(), models.KindDonation, "d-1")
	var transitionErr *TransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestRefundPendingRejected(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	pendingBooking(repo, "b-8", "")

	_, err := svc.Refund(context.Background(), models.KindBooking, "b-8")
	var transitionErr *TransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestInitiateOrderResolvesSponsorByEmail(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{authority: "A-1"})
	sponsors := &fakeSponsorRepo{byEmail: map[string]*models.Sponsor{
		"acme@example.com": {ID: "sp-1", Name: "Acme"},
	}}
	svc.Sponsors = sponsors

	result, err := svc.InitiateOrder(context.Background(), OrderInput{
		PackageID: "gold", Amount: 500000, Email: "acme@example.com",
	})
	require.NoError(t, err)

	tx, _ := repo.GetByID(models.KindOrder, result.TransactionID)
	assert.Equal(t, "sp-1", tx.SponsorID)
	assert.Empty(t, sponsors.created)
}

func TestInitiateOrderCreatesSponsor(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{authority: "A-1"})
	sponsors := &fakeSponsorRepo{byEmail: map[string]*models.Sponsor{}}
	svc.Sponsors = sponsors

	result, err := svc.InitiateOrder(context.Background(), OrderInput{
		PackageID: "gold", Amount: 500000,
		Name: "New Co", Email: "new@example.com", Phone: "0912",
	})
	require.NoError(t, err)
	require.Len(t, sponsors.created, 1)

	tx, _ := repo.GetByID(models.KindOrder, result.TransactionID)
	assert.Equal(t, sponsors.created[0].ID, tx.SponsorID)
}

func TestInitiateOrderRequiresSponsorDetails(t *testing.T) {
	repo := newFakeTransactionRepo()
	svc := newTestService(repo, &fakeGateway{})
	svc.Sponsors = &fakeSponsorRepo{byEmail: map[string]*models.Sponsor{}}

	// Unknown email and no name/phone to create a sponsor from.
	_, err := svc.InitiateOrder(context.Background(), OrderInput{
		PackageID: "gold", Amount: 500000, Email: "new@example.com",
	})
	assert.Error(t, err)
}
