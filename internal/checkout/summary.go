package checkout

// Summary is the locally estimated price breakdown of a cart. It is derived
// on every mutation and never edited directly.
type Summary struct {
	PassesSubtotalCents     int64 `json:"passesSubtotalCents"`
	HousingSubtotalCents    int64 `json:"housingSubtotalCents"`
	MerchSubtotalCents      int64 `json:"merchSubtotalCents"`
	PatronSubtotalCents     int64 `json:"patronSubtotalCents"`
	InsuranceSubtotalCents  int64 `json:"insuranceSubtotalCents"`
	PotentialInsuranceCents int64 `json:"potentialInsuranceCents"`
	SubtotalCents           int64 `json:"subtotalCents"`
	DiscountCents           int64 `json:"discountCents"`
	AccountCreditCents      int64 `json:"accountCreditCents"`
	EditCreditCents         int64 `json:"editCreditCents"`
	GrandTotalCents         int64 `json:"grandTotalCents"`
	ItemCount               int   `json:"itemCount"`
	Covered                 bool  `json:"covered"`
}

// SummaryInput carries everything ComputeSummary needs.
type SummaryInput struct {
	Passes             []PassItem
	Housing            *HousingItem
	Merch              []MerchItem
	Patron             *PatronItem
	InsuranceEnabled   bool
	InsuranceCents     int64
	PromoValid         bool
	PromoDiscountCents int64
	AccountCreditCents int64
	EditCreditCents    int64
}

// ComputeSummary applies the checkout pricing formula. The grand total is
// clamped at zero; a non-empty cart with a zero total is reported as covered.
func ComputeSummary(in SummaryInput) Summary {
	var s Summary
	for _, p := range in.Passes {
		s.PassesSubtotalCents += p.TotalCents()
	}
	if in.Housing != nil {
		s.HousingSubtotalCents = in.Housing.TotalCents
	}
	for _, m := range in.Merch {
		s.MerchSubtotalCents += m.TotalCents
	}
	if in.Patron != nil {
		s.PatronSubtotalCents = in.Patron.AmountCents
	}
	s.PotentialInsuranceCents = in.InsuranceCents
	if in.InsuranceEnabled {
		s.InsuranceSubtotalCents = in.InsuranceCents
	}
	s.SubtotalCents = s.PassesSubtotalCents + s.HousingSubtotalCents + s.MerchSubtotalCents +
		s.PatronSubtotalCents + s.InsuranceSubtotalCents

	if in.PromoValid {
		s.DiscountCents = in.PromoDiscountCents
	}
	s.AccountCreditCents = in.AccountCreditCents
	s.EditCreditCents = in.EditCreditCents

	s.GrandTotalCents = s.SubtotalCents - s.DiscountCents - s.AccountCreditCents - s.EditCreditCents
	if s.GrandTotalCents < 0 {
		s.GrandTotalCents = 0
	}

	s.ItemCount = len(in.Passes) + len(in.Merch)
	if in.Housing != nil {
		s.ItemCount++
	}
	if in.Patron != nil {
		s.ItemCount++
	}
	s.Covered = s.ItemCount > 0 && s.GrandTotalCents == 0
	return s
}
