package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RespondError maps engine errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var typed *shared.Error
	if errors.As(err, &typed) {
		status := http.StatusInternalServerError
		title := "Internal Error"
		switch typed.Kind {
		case shared.KindNotFound:
			status, title = http.StatusNotFound, "Not Found"
		case shared.KindInvalidArgument:
			status, title = http.StatusBadRequest, "Invalid Argument"
		case shared.KindImmutable:
			status, title = http.StatusConflict, "Immutable Field"
		case shared.KindReferentialIntegrity:
			status, title = http.StatusConflict, "Referential Integrity"
		}
		JSON(w, status, ProblemDetail{
			Title:  title,
			Status: status,
			Detail: typed.Msg,
			Field:  typed.Field,
		})
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
