package http

import (
	"errors"
	"net/http"

	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type errorResp struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{usecase.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{usecase.ErrInvalidAction, http.StatusBadRequest, "invalid_action"},
	{usecase.ErrInvalidProductID, http.StatusBadRequest, "invalid_product_id"},
	{usecase.ErrInvalidCustomer, http.StatusBadRequest, "invalid_customer"},
	{usecase.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{usecase.ErrMissingParameters, http.StatusBadRequest, "missing_parameters"},
	{usecase.ErrSignatureVerificationFailed, http.StatusBadRequest, "signature_verification_failed"},
	{usecase.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{usecase.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{usecase.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{usecase.ErrAlreadyPaid, http.StatusConflict, "already_paid"},
	{usecase.ErrDuplicate, http.StatusConflict, "duplicate"},
	{usecase.ErrMissingProductReference, http.StatusUnprocessableEntity, "missing_product_reference"},
}

// writeError maps usecase errors to status codes. Unknown errors are logged
// and reported as a bare 500.
func writeError(c *gin.Context, err error) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			_ = c.Error(err)
			c.JSON(e.status, errorResp{Error: e.code, Message: e.err.Error()})
			return
		}
	}
	logging.From(c).Error("request failed", "err", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorResp{Error: "internal", Message: "internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResp{Error: "bad_request", Message: msg})
}
