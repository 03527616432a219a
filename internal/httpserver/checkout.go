package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cart "popup-checkout/internal/checkout"
	"popup-checkout/internal/domain"
	checkoutsvc "popup-checkout/internal/service/checkout"
)

type checkoutHandler struct {
	svc *checkoutsvc.Service
}

type openRequest struct {
	ApplicationID int64 `json:"application_id" binding:"required"`
	Edit          bool  `json:"edit"`
}

type passRequest struct {
	AttendeeID int64 `json:"attendee_id" binding:"required"`
	ProductID  int64 `json:"product_id" binding:"required"`
	Quantity   int   `json:"quantity" binding:"min=0"`
}

type housingRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	CheckIn   string `json:"check_in" binding:"required"`
	CheckOut  string `json:"check_out" binding:"required"`
}

type merchRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"min=0"`
}

type patronRequest struct {
	ProductID    int64   `json:"product_id" binding:"required"`
	Amount       *int64  `json:"amount"`
	CustomAmount *string `json:"custom_amount"`
	Preset       bool    `json:"preset"`
}

type promoRequest struct {
	Code string `json:"code"`
}

type promoResponse struct {
	Applied  bool              `json:"applied"`
	Checkout *checkoutsvc.View `json:"checkout"`
}

type removeItemRequest struct {
	Kind       domain.ItemKind `json:"kind" binding:"required"`
	ProductID  int64           `json:"product_id"`
	AttendeeID int64           `json:"attendee_id"`
}

type stepRequest struct {
	Step string `json:"step" binding:"required"`
}

type submitRequest struct {
	ReturnURL string `json:"return_url"`
}

type returnRequest struct {
	URL string `json:"url" binding:"required"`
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, s)
	}
	return t.UTC(), nil
}

// respond writes the view of a checkout or the error that prevented the change.
func respond(c *gin.Context, view *checkoutsvc.View, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *checkoutHandler) catalog(c *gin.Context) {
	catalog, err := h.svc.Catalog(c.Request.Context(), c.Param("citySlug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func (h *checkoutHandler) open(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.Open(c.Request.Context(), c.Param("citySlug"), req.ApplicationID, req.Edit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *checkoutHandler) get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) cancel(c *gin.Context) {
	view, err := h.svc.Cancel(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) togglePass(c *gin.Context) {
	var req passRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.TogglePass(c.Request.Context(), checkoutID(c), req.AttendeeID, req.ProductID)
	respond(c, view, err)
}

func (h *checkoutHandler) updatePassQuantity(c *gin.Context) {
	var req passRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.UpdatePassQuantity(c.Request.Context(), checkoutID(c), req.AttendeeID, req.ProductID, req.Quantity)
	respond(c, view, err)
}

func (h *checkoutHandler) selectHousing(c *gin.Context) {
	var req housingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		writeError(c, err)
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		writeError(c, err)
		return
	}
	view, err := h.svc.SelectHousing(c.Request.Context(), checkoutID(c), req.ProductID, checkIn, checkOut)
	respond(c, view, err)
}

func (h *checkoutHandler) clearHousing(c *gin.Context) {
	view, err := h.svc.ClearHousing(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) updateMerch(c *gin.Context) {
	var req merchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.UpdateMerchQuantity(c.Request.Context(), checkoutID(c), req.ProductID, req.Quantity)
	respond(c, view, err)
}

func (h *checkoutHandler) setPatron(c *gin.Context) {
	var req patronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.SetPatron(c.Request.Context(), checkoutID(c), checkoutsvc.PatronInput{
		ProductID:    req.ProductID,
		AmountCents:  req.Amount,
		CustomAmount: req.CustomAmount,
		Preset:       req.Preset,
	})
	respond(c, view, err)
}

func (h *checkoutHandler) clearPatron(c *gin.Context) {
	view, err := h.svc.ClearPatron(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	applied, view, err := h.svc.ApplyPromoCode(c.Request.Context(), checkoutID(c), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, promoResponse{Applied: applied, Checkout: view})
}

func (h *checkoutHandler) clearPromo(c *gin.Context) {
	view, err := h.svc.ClearPromoCode(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) toggleInsurance(c *gin.Context) {
	view, err := h.svc.ToggleInsurance(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) removeItem(c *gin.Context) {
	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.RemoveItem(c.Request.Context(), checkoutID(c), cart.ItemRef{
		Kind:       req.Kind,
		ProductID:  req.ProductID,
		AttendeeID: req.AttendeeID,
	})
	respond(c, view, err)
}

func (h *checkoutHandler) clearCart(c *gin.Context) {
	view, err := h.svc.ClearCart(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) next(c *gin.Context) {
	view, err := h.svc.Next(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) back(c *gin.Context) {
	view, err := h.svc.Back(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) goTo(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.GoTo(c.Request.Context(), checkoutID(c), req.Step)
	respond(c, view, err)
}

func (h *checkoutHandler) preview(c *gin.Context) {
	view, err := h.svc.PreviewPayment(c.Request.Context(), checkoutID(c))
	respond(c, view, err)
}

func (h *checkoutHandler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.Request.Referer()
	}
	res, err := h.svc.SubmitPayment(c.Request.Context(), checkoutID(c), req.ReturnURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// returnRedirect is the landing route of the payment processor. A success
// flag completes the checkout and redirects to the same URL without the flag,
// so reloading the page never completes twice.
func (h *checkoutHandler) returnRedirect(c *gin.Context) {
	res, err := h.svc.CompleteReturn(c.Request.Context(), checkoutID(c), c.Request.URL.RequestURI())
	if err != nil {
		writeError(c, err)
		return
	}
	if c.Query("checkout") != "" {
		c.Redirect(http.StatusSeeOther, res.URL)
		return
	}
	c.JSON(http.StatusOK, res.Checkout)
}

func (h *checkoutHandler) completeReturn(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.CompleteReturn(c.Request.Context(), checkoutID(c), req.URL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
