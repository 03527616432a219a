// Package checkout runs checkout sessions: it loads a cart for an
// application, routes every change through the cart engine, performs the
// pricing oracle round trips and persists the result.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cart "popup-checkout/internal/checkout"
	"popup-checkout/internal/domain"
	"popup-checkout/internal/events"
	"popup-checkout/internal/oracle"
	"popup-checkout/internal/repository/session"
)

type cityRepo interface {
	GetBySlug(ctx context.Context, slug string) (*domain.PopupCity, error)
}

type productRepo interface {
	ListByCity(ctx context.Context, popupCityID int64) ([]domain.Product, error)
}

type applicationRepo interface {
	GetByID(ctx context.Context, popupCityID, id int64) (*domain.Application, error)
}

type pricingOracle interface {
	ValidateCoupon(ctx context.Context, code string, popupCityID int64) (oracle.Coupon, error)
	Preview(ctx context.Context, req oracle.PaymentRequest) (domain.Quote, error)
	CreatePayment(ctx context.Context, req oracle.PaymentRequest) (oracle.Payment, error)
}

// Deps groups the collaborators of the service.
type Deps struct {
	Cities       cityRepo
	Products     productRepo
	Applications applicationRepo
	Sessions     session.Store
	Idempotency  session.IdempotencyStore
	Oracle       pricingOracle
	Events       events.Publisher
	Logger       *zap.Logger
}

type Service struct {
	cities   cityRepo
	products productRepo
	apps     applicationRepo
	sessions session.Store
	idem     session.IdempotencyStore
	oracle   pricingOracle
	events   events.Publisher
	logger   *zap.Logger
	locks    *sessionLocks
	now      func() time.Time
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		cities:   d.Cities,
		products: d.Products,
		apps:     d.Applications,
		sessions: d.Sessions,
		idem:     d.Idempotency,
		oracle:   d.Oracle,
		events:   pub,
		logger:   logger.Named("checkout"),
		locks:    newSessionLocks(),
		now:      time.Now,
	}
}

// View is a checkout session as returned to clients.
type View struct {
	ID            uuid.UUID           `json:"id"`
	CitySlug      string              `json:"citySlug"`
	Currency      string              `json:"currency"`
	ApplicationID int64               `json:"applicationId"`
	LastPayment   *session.PaymentRef `json:"lastPayment,omitempty"`
	cart.View
}

func newView(s *session.Session) *View {
	return &View{
		ID:            s.ID,
		CitySlug:      s.CitySlug,
		Currency:      s.Currency,
		ApplicationID: s.ApplicationID,
		LastPayment:   s.LastPayment,
		View:          s.Cart.View(),
	}
}

// CatalogView lists a city's active products grouped by category.
type CatalogView struct {
	City     domain.PopupCity                            `json:"city"`
	Products map[domain.ProductCategory][]domain.Product `json:"products"`
}

func (s *Service) Catalog(ctx context.Context, citySlug string) (*CatalogView, error) {
	city, err := s.cities.GetBySlug(ctx, citySlug)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListByCity(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &CatalogView{City: *city, Products: cart.NewCatalog(products).Grouped()}, nil
}

// Open starts a checkout for an application. In edit mode the passes the
// attendees already own are loaded into the cart.
func (s *Service) Open(ctx context.Context, citySlug string, applicationID int64, edit bool) (*View, error) {
	city, err := s.cities.GetBySlug(ctx, citySlug)
	if err != nil {
		return nil, err
	}

	var (
		products []domain.Product
		app      *domain.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.ListByCity(gctx, city.ID)
		return err
	})
	g.Go(func() error {
		var err error
		app, err = s.apps.GetByID(gctx, city.ID, applicationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if app.Status != "" && app.Status != "accepted" {
		return nil, ErrApplicationNotAccepted
	}
	if len(app.Attendees) == 0 {
		return nil, ErrApplicationNoAttendees
	}

	catalog := cart.NewCatalog(products)
	c := cart.New(catalog, *app)
	if edit {
		c = cart.NewForEdit(catalog, *app)
	}

	now := s.now().UTC()
	sess := &session.Session{
		ID:            uuid.New(),
		PopupCityID:   city.ID,
		CitySlug:      city.Slug,
		Currency:      city.Currency,
		ApplicationID: app.ID,
		Cart:          c,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("checkout opened",
		zap.String("session_id", sess.ID.String()),
		zap.String("city", city.Slug),
		zap.Int64("application_id", app.ID),
		zap.Bool("edit", edit),
		zap.Int("products", len(products)))
	return newView(sess), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return newView(sess), nil
}

// Cancel discards the selection and returns the wizard to passes.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.Cancel()
		sess.LastPayment = nil
		return nil
	})
}

// mutate runs fn on the stored session under the session lock and saves the
// result. Nothing is saved when fn fails.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*View, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return newView(sess), nil
}

func (s *Service) publish(ctx context.Context, sess *session.Session, typ string, p *session.PaymentRef) {
	e := events.Event{
		Type:          typ,
		SessionID:     sess.ID.String(),
		PopupCityID:   sess.PopupCityID,
		ApplicationID: sess.ApplicationID,
		OccurredAt:    s.now().UTC(),
	}
	if p != nil {
		e.PaymentID = p.ID
		e.Status = p.Status
		e.AmountCents = p.AmountCents
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("publish event failed", zap.String("type", typ), zap.String("session_id", e.SessionID), zap.Error(err))
	}
}
