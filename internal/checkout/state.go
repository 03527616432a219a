package checkout

import (
	"encoding/json"

	"popup-checkout/internal/domain"
)

// View is the read model returned to clients.
type View struct {
	Step         Step         `json:"step"`
	Steps        []StepInfo   `json:"steps"`
	EditMode     bool         `json:"editMode"`
	Passes       []PassItem   `json:"passes"`
	Housing      *HousingItem `json:"housing,omitempty"`
	Merch        []MerchItem  `json:"merch"`
	Patron       *PatronItem  `json:"patron,omitempty"`
	Promo        Promo        `json:"promo"`
	Insurance    bool         `json:"insurance"`
	Summary      Summary      `json:"summary"`
	Pricing      Pricing      `json:"pricing"`
	PayableCents int64        `json:"payableCents"`
	Revision     uint64       `json:"revision"`
}

func (c *Cart) View() View {
	return View{
		Step:         c.step,
		Steps:        c.Steps(),
		EditMode:     c.editMode,
		Passes:       nonNil(c.Passes()),
		Housing:      c.Housing(),
		Merch:        nonNil(c.Merch()),
		Patron:       c.Patron(),
		Promo:        c.promo,
		Insurance:    c.insurance,
		Summary:      c.summary,
		Pricing:      c.pricing,
		PayableCents: c.PayableCents(),
		Revision:     c.revision,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// snapshot is the persisted form of a cart, including the request tokens
// so late oracle responses are still recognised after a reload.
type snapshot struct {
	Products   []domain.Product   `json:"products"`
	App        domain.Application `json:"application"`
	Passes     []PassItem         `json:"passes,omitempty"`
	Housing    *HousingItem       `json:"housing,omitempty"`
	Merch      []MerchItem        `json:"merch,omitempty"`
	Patron     *PatronItem        `json:"patron,omitempty"`
	Promo      Promo              `json:"promo"`
	PromoSeq   uint64             `json:"promoSeq,omitempty"`
	Insurance  bool               `json:"insurance"`
	EditMode   bool               `json:"editMode"`
	EditCredit int64              `json:"editCredit"`
	Step       Step               `json:"step"`
	Pricing    Pricing            `json:"pricing"`
	PreviewSeq uint64             `json:"previewSeq,omitempty"`
	Revision   uint64             `json:"revision"`
	Seq        uint64             `json:"seq"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		Products:   c.catalog.All(),
		App:        c.app,
		Passes:     c.passes,
		Housing:    c.housing,
		Merch:      c.merch,
		Patron:     c.patron,
		Promo:      c.promo,
		PromoSeq:   c.promo.pendingSeq,
		Insurance:  c.insurance,
		EditMode:   c.editMode,
		EditCredit: c.editCredit,
		Step:       c.step,
		Pricing:    c.pricing,
		PreviewSeq: c.pricing.pendingSeq,
		Revision:   c.revision,
		Seq:        c.seq,
	})
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored := New(NewCatalog(s.Products), s.App)
	restored.passes = s.Passes
	restored.housing = s.Housing
	restored.merch = s.Merch
	restored.patron = s.Patron
	restored.promo = s.Promo
	restored.promo.pendingSeq = s.PromoSeq
	restored.insurance = s.Insurance
	restored.editMode = s.EditMode
	restored.editCredit = s.EditCredit
	if _, ok := ParseStep(string(s.Step)); ok {
		restored.step = s.Step
	}
	restored.pricing = s.Pricing
	restored.pricing.pendingSeq = s.PreviewSeq
	if restored.pricing.Status == "" {
		restored.pricing.Status = PricingEstimated
	}
	if restored.promo.Status == "" {
		restored.promo.Status = PromoIdle
	}
	restored.revision = s.Revision
	restored.seq = s.Seq
	restored.recompute()
	*c = *restored
	return nil
}
