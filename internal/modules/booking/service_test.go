package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
	"propertydesk/internal/modules/tenant"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/saga"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) HasOverlap(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, roomID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomRepository) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	if args.Error(0) == nil {
		inv.ID = 55
	}
	return args.Error(0)
}

func (m *MockInvoiceRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateTotals(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = "task-1"
	}
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type stubTenants struct {
	names map[int64]string
}

func (s stubTenants) Get(_ context.Context, id int64) (*domain.Tenant, error) {
	name, ok := s.names[id]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return &domain.Tenant{ID: id, FullName: name}, nil
}

func (s stubTenants) DisplayName(_ context.Context, id int64) string {
	if name, ok := s.names[id]; ok {
		return name
	}
	return domain.UnknownTenantName
}

type notifierSpy struct {
	rooms []int64
}

func (n *notifierSpy) RoomChanged(_ context.Context, roomID int64) {
	n.rooms = append(n.rooms, roomID)
}

type fixture struct {
	svc      *Service
	bookings *MockBookingRepository
	rooms    *MockRoomRepository
	invoices *MockInvoiceRepository
	tasks    *MockTaskRepository
	notifier *notifierSpy
	events   *events.Recorder
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		bookings: new(MockBookingRepository),
		rooms:    new(MockRoomRepository),
		invoices: new(MockInvoiceRepository),
		tasks:    new(MockTaskRepository),
		notifier: &notifierSpy{},
		events:   &events.Recorder{},
		now:      time.Date(2025, 2, 10, 11, 0, 0, 0, time.UTC),
	}
	tenants := stubTenants{names: map[int64]string{3: "Amani Kabila"}}
	f.svc = NewService(f.bookings, f.rooms, f.invoices, f.tasks, tenants, f.notifier, f.events, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func day(d int) time.Time {
	return time.Date(2025, 2, d, 12, 0, 0, 0, time.UTC)
}

func inProgressBooking() *domain.Booking {
	checkIn := day(4)
	return &domain.Booking{
		ID:            7,
		RoomID:        1,
		TenantID:      3,
		PlannedStart:  day(4),
		PlannedEnd:    day(10),
		ActualCheckIn: &checkIn,
		TotalPrice:    300,
		Status:        domain.BookingInProgress,
	}
}

func withStatus(s domain.BookingStatus) any {
	return mock.MatchedBy(func(b *domain.Booking) bool { return b.Status == s })
}

func TestCreate_WithDepositIsConfirmedAndInvoiced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := &domain.Room{ID: 1, Number: "101", NightlyPrice: 50, Status: domain.RoomAvailable}

	f.rooms.On("GetByID", ctx, int64(1)).Return(room, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(1), day(4), int64(0)).Return(false, nil)
	f.bookings.On("Create", ctx, withStatus(domain.BookingConfirmed)).Return(nil)
	f.invoices.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	details, err := f.svc.Create(ctx, CreateBookingRequest{RoomID: 1, TenantID: 3, PlannedStart: day(1), PlannedEnd: day(4), DepositAmount: 20})
	require.NoError(t, err)

	assert.Equal(t, int64(999), details.ID)
	assert.Equal(t, 150.0, details.TotalPrice)
	assert.Equal(t, "101", details.RoomNumber)
	assert.Equal(t, "Amani Kabila", details.TenantName)
	require.Len(t, details.Invoices, 1)
	assert.Equal(t, 150.0, details.Invoices[0].NetTotal)
	assert.Equal(t, int64(999), details.Invoices[0].BookingID)
	assert.Equal(t, []string{events.BookingCreated}, f.events.Topics())
	assert.Equal(t, []int64{1}, f.notifier.rooms)
}

func TestCreate_ExplicitTotalAndPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	total := 120.0

	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50}, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(1), day(4), int64(0)).Return(false, nil)
	f.bookings.On("Create", ctx, withStatus(domain.BookingPending)).Return(nil)
	f.invoices.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	details, err := f.svc.Create(ctx, CreateBookingRequest{RoomID: 1, TenantID: 3, PlannedStart: day(1), PlannedEnd: day(4), TotalPrice: &total})
	require.NoError(t, err)
	assert.Equal(t, 120.0, details.TotalPrice)
	assert.Equal(t, domain.BookingPending, details.Status)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateBookingRequest{RoomID: 1, TenantID: 3, PlannedStart: day(4), PlannedEnd: day(4)})
	assert.ErrorIs(t, err, ErrValidation)

	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50}, nil)
	_, err = f.svc.Create(ctx, CreateBookingRequest{RoomID: 1, TenantID: 42, PlannedStart: day(1), PlannedEnd: day(4)})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_OverlapRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50}, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(1), day(4), int64(0)).Return(true, nil)

	_, err := f.svc.Create(ctx, CreateBookingRequest{RoomID: 1, TenantID: 3, PlannedStart: day(1), PlannedEnd: day(4)})
	assert.ErrorIs(t, err, ErrNotAvailable)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_InvoiceFailureRemovesBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50}, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(1), day(4), int64(0)).Return(false, nil)
	f.bookings.On("Create", ctx, mock.Anything).Return(nil)
	f.invoices.On("Create", ctx, mock.Anything).Return(dbErr)
	f.bookings.On("Delete", mock.Anything, int64(999)).Return(nil)

	_, err := f.svc.Create(ctx, CreateBookingRequest{RoomID: 1, TenantID: 3, PlannedStart: day(1), PlannedEnd: day(4)})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)

	se, ok := saga.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "issue_stay_invoice", se.FailedStep)
	assert.True(t, se.Consistent())
	f.bookings.AssertCalled(t, "Delete", mock.Anything, int64(999))
	assert.Empty(t, f.events.Events)
}

func TestCheckIn_MarksRoomOccupied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := &domain.Booking{ID: 7, RoomID: 1, TenantID: 3, PlannedStart: day(4), PlannedEnd: day(10), Status: domain.BookingConfirmed}

	f.bookings.On("GetByID", ctx, int64(7)).Return(b, nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Status: domain.RoomAvailable}, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingInProgress)).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomOccupied).Return(nil)

	got, err := f.svc.CheckIn(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingInProgress, got.Status)
	require.NotNil(t, got.ActualCheckIn)
	assert.Equal(t, f.now, *got.ActualCheckIn)
	assert.Equal(t, []string{events.BookingCheckedIn}, f.events.Topics())
}

func TestCheckIn_RefusedInMaintenance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{ID: 7, RoomID: 1, Status: domain.BookingConfirmed}, nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Status: domain.RoomMaintenance}, nil)

	_, err := f.svc.CheckIn(ctx, 7)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	f.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCheckIn_RoomFailureRestoresBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{ID: 7, RoomID: 1, Status: domain.BookingPending}, nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Status: domain.RoomAvailable}, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingInProgress)).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomOccupied).Return(errors.New("timeout"))
	f.bookings.On("Update", mock.Anything, withStatus(domain.BookingPending)).Return(nil)

	_, err := f.svc.CheckIn(ctx, 7)
	se, ok := saga.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "room_occupied", se.FailedStep)
	assert.Equal(t, []string{"start_stay"}, se.Compensated)
	f.bookings.AssertCalled(t, "Update", mock.Anything, withStatus(domain.BookingPending))
}

func TestCheckoutChoice_SuggestsZeroDiscountPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	proposed := day(13)

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Number: "101", NightlyPrice: 50, Status: domain.RoomPendingCheckout}, nil)

	choice, err := f.svc.CheckoutChoice(ctx, 7, &proposed)
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateChoice, choice.State)
	assert.Equal(t, []string{CheckoutDepart, CheckoutExtend}, choice.Options)
	assert.True(t, choice.Flagged)
	require.NotNil(t, choice.Suggestion)
	assert.Equal(t, 450.0, choice.Suggestion.NewTotal)
	assert.Equal(t, 3, choice.Suggestion.AdditionalNights)
}

func TestCheckoutChoice_RequiresCheckedInGuest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{ID: 7, Status: domain.BookingConfirmed}, nil)

	_, err := f.svc.CheckoutChoice(ctx, 7, nil)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestDepart_CompletesBookingAndCreatesCleaningTask(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Number: "101", Status: domain.RoomPendingCheckout}, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingCompleted)).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomPendingCleaning).Return(nil)
	f.tasks.On("Create", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

	res, err := f.svc.Depart(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, res.Booking.Status)
	require.NotNil(t, res.Booking.ActualCheckOut)
	assert.Equal(t, f.now, *res.Booking.ActualCheckOut)
	assert.Equal(t, "task-1", res.Task.ID)
	assert.Equal(t, domain.TaskCleaning, res.Task.Kind)
	require.NotNil(t, res.Task.BookingID)
	assert.Equal(t, int64(7), *res.Task.BookingID)
	assert.Equal(t, []string{events.BookingCheckedOut, events.TaskCleaningCreated}, f.events.Topics())
	assert.Equal(t, []int64{1}, f.notifier.rooms)
}

func TestDepart_TaskFailureRollsBackRoomAndBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Status: domain.RoomPendingCheckout}, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingCompleted)).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomPendingCleaning).Return(nil)
	f.tasks.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
	f.rooms.On("UpdateStatus", mock.Anything, int64(1), domain.RoomPendingCheckout).Return(nil)
	f.bookings.On("Update", mock.Anything, withStatus(domain.BookingInProgress)).Return(nil)

	_, err := f.svc.Depart(ctx, 7)
	se, ok := saga.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "create_cleaning_task", se.FailedStep)
	assert.Equal(t, []string{"room_pending_cleaning", "complete_booking"}, se.Compensated)
	assert.True(t, se.Consistent())
	f.rooms.AssertCalled(t, "UpdateStatus", mock.Anything, int64(1), domain.RoomPendingCheckout)
	assert.Empty(t, f.events.Events)
}

func TestDepart_ReportsFailedCompensation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Status: domain.RoomPendingCheckout}, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingCompleted)).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomPendingCleaning).Return(errors.New("timeout"))
	f.bookings.On("Update", mock.Anything, withStatus(domain.BookingInProgress)).Return(errors.New("db down"))

	_, err := f.svc.Depart(ctx, 7)
	se, ok := saga.AsError(err)
	require.True(t, ok)
	assert.False(t, se.Consistent())
	assert.Contains(t, se.CompensationErrs, "complete_booking")
}

func TestCheckoutExtend_BillsExtensionAndReoccupiesRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := &domain.Room{ID: 1, Number: "101", NightlyPrice: 50, Status: domain.RoomPendingCheckout}

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(room, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(10), day(13), int64(7)).Return(false, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingConfirmed)).Return(nil)
	f.invoices.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomOccupied).Return(nil)

	res, err := f.svc.CheckoutExtend(ctx, 7, ExtendRequest{NewEnd: day(13), DiscountPerNight: 5})
	require.NoError(t, err)
	assert.Equal(t, 435.0, res.Booking.TotalPrice)
	assert.Equal(t, day(13), res.Booking.PlannedEnd)
	assert.Equal(t, domain.BookingConfirmed, res.Booking.Status)
	assert.True(t, res.Booking.CheckedIn())
	require.NotNil(t, res.Invoice)
	assert.Equal(t, 135.0, res.Invoice.NetTotal)
	assert.Equal(t, domain.InvoiceKindExtension, res.Invoice.Kind)
	assert.Equal(t, []string{events.BookingExtended}, f.events.Topics())
}

func TestExtend_FutureBookingLeavesFlaggedRoomAlone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	future := &domain.Booking{ID: 8, RoomID: 1, TenantID: 3, PlannedStart: day(14), PlannedEnd: day(16), TotalPrice: 100, Status: domain.BookingPending}

	f.bookings.On("GetByID", ctx, int64(8)).Return(future, nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50, Status: domain.RoomPendingCheckout}, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(16), day(18), int64(8)).Return(false, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingConfirmed)).Return(nil)
	f.invoices.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	res, err := f.svc.Extend(ctx, 8, ExtendRequest{NewEnd: day(18)})
	require.NoError(t, err)
	assert.Equal(t, day(18), res.Booking.PlannedEnd)
	f.rooms.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtend_AgreedTotalOverridesDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	agreed := 420.0

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50, Status: domain.RoomOccupied}, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(10), day(13), int64(7)).Return(false, nil)
	f.bookings.On("Update", ctx, mock.Anything).Return(nil)
	f.invoices.On("Create", ctx, mock.Anything).Return(nil)

	res, err := f.svc.Extend(ctx, 7, ExtendRequest{NewEnd: day(13), DiscountPerNight: 1, AgreedTotal: &agreed})
	require.NoError(t, err)
	assert.Equal(t, 420.0, res.Booking.TotalPrice)
	assert.Equal(t, 30.0, res.Quote.DiscountExtra)
	f.rooms.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtend_RejectsEndNotAfterCurrent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50}, nil)

	_, err := f.svc.Extend(ctx, 7, ExtendRequest{NewEnd: day(9)})
	assert.ErrorIs(t, err, billing.ErrExtensionNotAfterEnd)
	f.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtend_InvoiceFailureRestoresBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, NightlyPrice: 50, Status: domain.RoomOccupied}, nil)
	f.bookings.On("HasOverlap", ctx, int64(1), day(10), day(12), int64(7)).Return(false, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingConfirmed)).Return(nil)
	f.invoices.On("Create", ctx, mock.Anything).Return(errors.New("constraint"))
	restored := mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingInProgress && b.PlannedEnd.Equal(day(10)) && b.TotalPrice == 300
	})
	f.bookings.On("Update", mock.Anything, restored).Return(nil)

	_, err := f.svc.Extend(ctx, 7, ExtendRequest{NewEnd: day(12)})
	se, ok := saga.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "issue_extension_invoice", se.FailedStep)
	f.bookings.AssertCalled(t, "Update", mock.Anything, restored)
}

func TestCancel_InProgressCancelsUnpaidInvoicesAndQueuesCleaning(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(7)).Return(inProgressBooking(), nil)
	f.invoices.On("ListByBooking", ctx, int64(7)).Return([]domain.Invoice{
		{ID: 1, NetTotal: 300, Status: domain.InvoiceIssued},
		{ID: 2, NetTotal: 100, AmountPaid: 40, Status: domain.InvoicePartiallyPaid},
		{ID: 3, NetTotal: 50, AmountPaid: 50, Status: domain.InvoicePaid},
	}, nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Status: domain.RoomOccupied}, nil)
	f.bookings.On("Update", ctx, withStatus(domain.BookingCancelled)).Return(nil)
	f.invoices.On("UpdateTotals", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.ID == 1 && inv.Status == domain.InvoiceCancelled
	})).Return(nil)
	f.rooms.On("UpdateStatus", ctx, int64(1), domain.RoomPendingCleaning).Return(nil)
	f.tasks.On("Create", ctx, mock.Anything).Return(nil)

	b, err := f.svc.Cancel(ctx, 7, " guest left early ")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	assert.Equal(t, "guest left early", b.CancelReason)
	require.NotNil(t, b.CancelledAt)
	f.invoices.AssertNumberOfCalls(t, "UpdateTotals", 1)
	assert.Equal(t, []string{events.BookingCancelled, events.TaskCleaningCreated}, f.events.Topics())
}

func TestCancel_TerminalRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{ID: 7, Status: domain.BookingCompleted}, nil)

	_, err := f.svc.Cancel(ctx, 7, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGet_MissingTenantUsesPlaceholder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(8)).Return(&domain.Booking{ID: 8, RoomID: 1, TenantID: 404}, nil)
	f.rooms.On("GetByID", ctx, int64(1)).Return(&domain.Room{ID: 1, Number: "101"}, nil)
	f.invoices.On("ListByBooking", ctx, int64(8)).Return(nil, nil)

	details, err := f.svc.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownTenantName, details.TenantName)
	assert.Equal(t, "101", details.RoomNumber)
	assert.NotNil(t, details.Invoices)
}
