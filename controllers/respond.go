package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dineflow/pos-backend/services"
	"github.com/dineflow/pos-backend/utils"
	"gorm.io/gorm"
)

// respondDomainError maps the error taxonomy to HTTP codes. Anything not in
// the taxonomy is an unexpected failure: the transaction was already rolled
// back, the caller gets a 500 and state is unchanged.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, ErrSessionLockViolation), errors.Is(err, ErrNoPermission):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, ErrTableUnavailable),
		errors.Is(err, ErrNoActiveSession),
		errors.Is(err, ErrOrderNotServed),
		errors.Is(err, ErrCannotModifyPaidInvoice),
		errors.Is(err, ErrInvoiceAlreadyCancelled),
		errors.Is(err, ErrInvalidStatusTransition),
		errors.Is(err, ErrTableNotMergeable),
		errors.Is(err, services.ErrDuplicateDiscountCode):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrMissingGstinForTaxRemoval),
		errors.Is(err, services.ErrMinOrderNotMet),
		errors.Is(err, services.ErrInvalidDiscountCode),
		errors.Is(err, services.ErrInvalidDiscountType):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.ErrorLogger.Printf("unexpected failure: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal error"))
	}
}

// isEmptyBody lets endpoints with an optional JSON body accept none at all.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
