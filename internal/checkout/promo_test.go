package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginPromoNormalizesCode(t *testing.T) {
	c := newTestCart()

	tok, err := c.BeginPromo("  summer-10 ")
	require.NoError(t, err)
	assert.NotZero(t, tok.Seq)
	p := c.Promo()
	assert.Equal(t, PromoValidating, p.Status)
	assert.Equal(t, "SUMMER-10", p.PendingCode)
	assert.False(t, p.Valid)
}

func TestBeginPromoRejectsBadFormat(t *testing.T) {
	c := newTestCart()
	for _, code := range []string{"", "   ", "BAD CODE", "NO!", string(make([]byte, 65))} {
		_, err := c.BeginPromo(code)
		assert.ErrorIs(t, err, ErrInvalidPromoFormat, "%q", code)
	}
	assert.Equal(t, PromoIdle, c.Promo().Status)
}

func TestPromoApplyIsIdempotent(t *testing.T) {
	c := newTestCart()
	require.True(t, c.TogglePass(mainID, passMain))

	for i := 0; i < 2; i++ {
		tok, err := c.BeginPromo("SAVE50")
		require.NoError(t, err)
		require.True(t, c.CompletePromo(tok, 5000))
	}

	p := c.Promo()
	assert.True(t, p.Valid)
	assert.Equal(t, "SAVE50", p.Code)
	assert.Equal(t, PromoApplied, p.Status)
	assert.Equal(t, int64(5000), c.Summary().DiscountCents)
	assert.Equal(t, int64(45000), c.Summary().GrandTotalCents)
	assert.Equal(t, "SAVE50", c.PromoCode())
}

func TestPromoRejectionKeepsCommittedCode(t *testing.T) {
	c := newTestCart()
	require.True(t, c.TogglePass(mainID, passMain))
	tok, err := c.BeginPromo("GOOD")
	require.NoError(t, err)
	require.True(t, c.CompletePromo(tok, 1000))

	tok, err = c.BeginPromo("BADCODE")
	require.NoError(t, err)
	require.True(t, c.FailPromo(tok, PromoInvalid, "coupon not found"))

	p := c.Promo()
	assert.Equal(t, PromoRejected, p.Status)
	assert.Equal(t, PromoInvalid, p.Failure)
	assert.Equal(t, "GOOD", p.Code)
	assert.True(t, p.Valid)
	assert.Equal(t, int64(1000), c.Summary().DiscountCents)
}

func TestPromoRejectionOnEmptyPromo(t *testing.T) {
	c := newTestCart()
	tok, err := c.BeginPromo("BADCODE")
	require.NoError(t, err)
	require.True(t, c.FailPromo(tok, PromoUnavailable, "oracle unavailable"))

	p := c.Promo()
	assert.False(t, p.Valid)
	assert.Zero(t, p.DiscountCents)
	assert.Equal(t, PromoUnavailable, p.Failure)
	assert.Empty(t, c.PromoCode())
}

func TestPromoStaleCompletionIsDropped(t *testing.T) {
	c := newTestCart()

	first, err := c.BeginPromo("FIRST")
	require.NoError(t, err)
	second, err := c.BeginPromo("SECOND")
	require.NoError(t, err)

	assert.False(t, c.CompletePromo(first, 9000))
	assert.False(t, c.FailPromo(first, PromoInvalid, ""))
	assert.Equal(t, PromoValidating, c.Promo().Status)

	require.True(t, c.CompletePromo(second, 2000))
	assert.Equal(t, "SECOND", c.Promo().Code)
	assert.Equal(t, int64(2000), c.Promo().DiscountCents)
}

func TestClearPromoAbandonsInFlightValidation(t *testing.T) {
	c := newTestCart()
	tok, err := c.BeginPromo("LATE")
	require.NoError(t, err)

	c.ClearPromoCode()
	assert.False(t, c.CompletePromo(tok, 3000))

	p := c.Promo()
	assert.Equal(t, PromoIdle, p.Status)
	assert.False(t, p.Valid)
	assert.Zero(t, p.DiscountCents)
	assert.Empty(t, p.Code)
}

func TestPromoCompletionSurvivesCartMutation(t *testing.T) {
	c := newTestCart()
	tok, err := c.BeginPromo("KEEP")
	require.NoError(t, err)
	require.True(t, c.TogglePass(mainID, passMain))

	assert.True(t, c.CompletePromo(tok, 500))
	assert.Equal(t, int64(49500), c.Summary().GrandTotalCents)
}
