package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"popup-checkout/internal/domain"
	"popup-checkout/internal/events"
	"popup-checkout/internal/oracle"
	"popup-checkout/internal/repository/session"
)

func ptr[T any](v T) *T { return &v }

const (
	cityID   int64 = 7
	citySlug       = "lisbon"
	appID    int64 = 100

	mainID int64 = 1
	kidID  int64 = 3

	passMain  int64 = 10
	passKid   int64 = 12
	housingID int64 = 20
	merchMug  int64 = 31
	patronVar int64 = 41
)

func testCity() *domain.PopupCity {
	return &domain.PopupCity{ID: cityID, Slug: citySlug, Name: "Lisbon", Currency: "EUR"}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: passMain, PopupCityID: cityID, Name: "Month pass", Category: domain.CategoryPass, Audience: domain.AttendeeMain, PriceCents: 50000, IsActive: true, InsurancePercentage: ptr(int64(10))},
		{ID: passKid, PopupCityID: cityID, Name: "Kid pass", Category: domain.CategoryPass, Audience: domain.AttendeeKid, PriceCents: 10000, IsActive: true},
		{ID: housingID, PopupCityID: cityID, Name: "Dorm bed", Category: domain.CategoryHousing, PriceCents: 4000, IsActive: true},
		{ID: merchMug, PopupCityID: cityID, Name: "Mug", Category: domain.CategoryMerch, PriceCents: 1200, IsActive: true},
		{ID: patronVar, PopupCityID: cityID, Name: "Patron", Category: domain.CategoryPatron, PriceCents: 25000, MinPriceCents: ptr(int64(5000)), IsActive: true},
	}
}

func testApplication() *domain.Application {
	return &domain.Application{
		ID:          appID,
		PopupCityID: cityID,
		Status:      "accepted",
		Attendees: []domain.Attendee{
			{ID: mainID, Name: "Main", Category: domain.AttendeeMain},
			{ID: kidID, Name: "Kid", Category: domain.AttendeeKid},
		},
	}
}

type stubCities struct {
	city *domain.PopupCity
}

func (s *stubCities) GetBySlug(_ context.Context, slug string) (*domain.PopupCity, error) {
	if s.city == nil || s.city.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return s.city, nil
}

type stubProducts struct {
	products []domain.Product
	err      error
}

func (s *stubProducts) ListByCity(_ context.Context, _ int64) ([]domain.Product, error) {
	return s.products, s.err
}

type stubApplications struct {
	app *domain.Application
}

func (s *stubApplications) GetByID(_ context.Context, popupCityID, id int64) (*domain.Application, error) {
	if s.app == nil || s.app.ID != id || s.app.PopupCityID != popupCityID {
		return nil, domain.ErrNotFound
	}
	return s.app, nil
}

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) ValidateCoupon(ctx context.Context, code string, popupCityID int64) (oracle.Coupon, error) {
	args := m.Called(ctx, code, popupCityID)
	return args.Get(0).(oracle.Coupon), args.Error(1)
}

func (m *mockOracle) Preview(ctx context.Context, req oracle.PaymentRequest) (domain.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func (m *mockOracle) CreatePayment(ctx context.Context, req oracle.PaymentRequest) (oracle.Payment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(oracle.Payment), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *Service
	oracle    *mockOracle
	published *recordingPublisher
	idem      session.IdempotencyStore
	apps      *stubApplications
	products  *stubProducts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		oracle:    &mockOracle{},
		published: &recordingPublisher{},
		idem:      session.NewMemoryIdempotency(time.Minute),
		apps:      &stubApplications{app: testApplication()},
		products:  &stubProducts{products: testProducts()},
	}
	f.svc = New(Deps{
		Cities:       &stubCities{city: testCity()},
		Products:     f.products,
		Applications: f.apps,
		Sessions:     session.NewMemory(time.Hour),
		Idempotency:  f.idem,
		Oracle:       f.oracle,
		Events:       f.published,
	})
	t.Cleanup(func() { f.oracle.AssertExpectations(t) })
	return f
}

func (f *fixture) open(t *testing.T) uuid.UUID {
	t.Helper()
	view, err := f.svc.Open(context.Background(), citySlug, appID, false)
	require.NoError(t, err)
	return view.ID
}

// atConfirm opens a checkout with the main pass selected and moves it to confirm.
func (f *fixture) atConfirm(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := f.open(t)
	_, err := f.svc.TogglePass(ctx, id, mainID, passMain)
	require.NoError(t, err)
	_, err = f.svc.GoTo(ctx, id, "confirm")
	require.NoError(t, err)
	return id
}
