package checkout

import (
	"popup-checkout/internal/domain"
)

func ptr[T any](v T) *T { return &v }

const (
	mainID   int64 = 1
	spouseID int64 = 2
	kidID    int64 = 3

	passMain   int64 = 10
	passSpouse int64 = 11
	passKid    int64 = 12
	passOld    int64 = 13
	passAll    int64 = 14
	housingID  int64 = 20
	merchShirt int64 = 30
	merchMug   int64 = 31
	patronFlat int64 = 40
	patronVar  int64 = 41
)

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: passMain, Name: "Month pass", Category: domain.CategoryPass, Audience: domain.AttendeeMain, PriceCents: 50000, IsActive: true, InsurancePercentage: ptr(int64(10))},
		{ID: passSpouse, Name: "Spouse pass", Category: domain.CategoryPass, Audience: domain.AttendeeSpouse, PriceCents: 40000, ComparePriceCents: ptr(int64(45000)), IsActive: true},
		{ID: passKid, Name: "Kid pass", Category: domain.CategoryPass, Audience: domain.AttendeeKid, PriceCents: 10000, IsActive: true},
		{ID: passOld, Name: "Week pass", Category: domain.CategoryPass, Audience: domain.AttendeeMain, PriceCents: 20000, IsActive: false},
		{ID: passAll, Name: "Day pass", Category: domain.CategoryPass, PriceCents: 3000, IsActive: true},
		{ID: housingID, Name: "Dorm bed", Category: domain.CategoryHousing, PriceCents: 4000, IsActive: true, InsurancePercentage: ptr(int64(5))},
		{ID: merchShirt, Name: "Shirt", Category: domain.CategoryMerch, PriceCents: 2500, IsActive: true},
		{ID: merchMug, Name: "Mug", Category: domain.CategoryMerch, PriceCents: 1200, IsActive: true},
		{ID: patronFlat, Name: "Supporter", Category: domain.CategoryPatron, PriceCents: 10000, IsActive: true},
		{ID: patronVar, Name: "Patron", Category: domain.CategoryPatron, PriceCents: 25000, MinPriceCents: ptr(int64(5000)), IsActive: true},
	}
}

func testApplication() domain.Application {
	return domain.Application{
		ID:          100,
		PopupCityID: 7,
		Status:      "accepted",
		Attendees: []domain.Attendee{
			{ID: mainID, Name: "Main", Category: domain.AttendeeMain},
			{ID: spouseID, Name: "Spouse", Category: domain.AttendeeSpouse},
			{ID: kidID, Name: "Kid", Category: domain.AttendeeKid},
		},
	}
}

func newTestCart() *Cart {
	return New(NewCatalog(testProducts()), testApplication())
}
