package checkout

import "popup-checkout/internal/domain"

// Step is a position in the purchase wizard.
type Step string

const (
	StepPasses  Step = "passes"
	StepPatron  Step = "patron"
	StepHousing Step = "housing"
	StepMerch   Step = "merch"
	StepConfirm Step = "confirm"
	StepSuccess Step = "success"
)

type StepInfo struct {
	Step        Step   `json:"step"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Optional    bool   `json:"optional"`
}

var stepOrder = []StepInfo{
	{Step: StepPasses, Label: "Passes", Description: "Choose passes for each attendee", Icon: "ticket"},
	{Step: StepPatron, Label: "Patron", Description: "Support the village with a contribution", Icon: "heart", Optional: true},
	{Step: StepHousing, Label: "Housing", Description: "Book a place to stay", Icon: "home", Optional: true},
	{Step: StepMerch, Label: "Merch", Description: "Add merchandise to your order", Icon: "shirt", Optional: true},
	{Step: StepConfirm, Label: "Confirm", Description: "Review and pay", Icon: "check"},
	{Step: StepSuccess, Label: "Done", Description: "Purchase complete", Icon: "party"},
}

// stepCategory maps optional steps to the catalog category that enables them.
var stepCategory = map[Step]domain.ProductCategory{
	StepPatron:  domain.CategoryPatron,
	StepHousing: domain.CategoryHousing,
	StepMerch:   domain.CategoryMerch,
}

// ParseStep validates a step name.
func ParseStep(s string) (Step, bool) {
	for _, info := range stepOrder {
		if string(info.Step) == s {
			return info.Step, true
		}
	}
	return "", false
}

func stepIndex(s Step) int {
	for i, info := range stepOrder {
		if info.Step == s {
			return i
		}
	}
	return -1
}

// Steps lists the wizard steps offered for this cart. Optional steps without
// any active product in the catalog are left out.
func (c *Cart) Steps() []StepInfo {
	out := make([]StepInfo, 0, len(stepOrder))
	for _, info := range stepOrder {
		if c.offered(info.Step) {
			out = append(out, info)
		}
	}
	return out
}

func (c *Cart) offered(s Step) bool {
	cat, optional := stepCategory[s]
	if !optional {
		return true
	}
	return c.catalog.Has(cat)
}

// Step returns the current wizard position.
func (c *Cart) Step() Step {
	return c.step
}

// Next advances to the next offered step. Leaving passes requires at least
// one selected pass; confirm is the last step reachable by navigation.
func (c *Cart) Next() error {
	switch c.step {
	case StepSuccess:
		return ErrTerminalStep
	case StepConfirm:
		return ErrSuccessNeedsPayment
	}
	if err := c.guardLeaving(c.step); err != nil {
		return err
	}
	for i := stepIndex(c.step) + 1; i < len(stepOrder); i++ {
		s := stepOrder[i].Step
		if c.offered(s) {
			c.step = s
			return nil
		}
	}
	return ErrStepUnavailable
}

// Back returns to the previous offered step. Selections are preserved.
func (c *Cart) Back() error {
	if c.step == StepSuccess {
		return ErrTerminalStep
	}
	for i := stepIndex(c.step) - 1; i >= 0; i-- {
		s := stepOrder[i].Step
		if !c.offered(s) {
			continue
		}
		if s == StepPasses {
			c.Reset()
			return nil
		}
		c.step = s
		return nil
	}
	return nil
}

// GoTo jumps to a step. Backward jumps are always allowed; forward jumps are
// subject to the same guard as Next.
func (c *Cart) GoTo(s Step) error {
	target := stepIndex(s)
	if target < 0 {
		return ErrUnknownStep
	}
	if s == StepSuccess {
		return ErrSuccessNeedsPayment
	}
	if c.step == StepSuccess {
		return ErrTerminalStep
	}
	if !c.offered(s) {
		return ErrStepUnavailable
	}
	if target > stepIndex(c.step) {
		if err := c.guardLeaving(StepPasses); err != nil {
			return err
		}
	}
	if s == StepPasses {
		c.Reset()
		return nil
	}
	c.step = s
	return nil
}

func (c *Cart) guardLeaving(s Step) error {
	if s == StepPasses && len(c.passes) == 0 {
		return ErrNoPassesSelected
	}
	return nil
}

// Reset moves back to passes and abandons any preview in flight. Selections
// are kept.
func (c *Cart) Reset() {
	c.step = StepPasses
	if c.pricing.Status == PricingPreviewing {
		c.abandonPreview()
	}
}

// MarkSuccess is the only way into the success step. It is called after an
// approved payment or a confirmed return from the payment processor, and
// discards the purchased selection.
func (c *Cart) MarkSuccess() {
	c.clearSelection()
	c.promo = Promo{Status: PromoIdle}
	c.insurance = false
	c.step = StepSuccess
	c.touch()
}
