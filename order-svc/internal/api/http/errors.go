package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"opendfood/logger"
	"opendfood/order-svc/internal/domain"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to client responses. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		lineErr   *domain.LineError
		statusErr *domain.StatusError
		transErr  *domain.TransitionError
	)

	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "service unavailable for this address"})
	case errors.Is(err, domain.ErrTableNotFound), errors.Is(err, domain.ErrTableInactive):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table"})
	case errors.As(err, &lineErr):
		code := http.StatusUnprocessableEntity
		if errors.Is(err, domain.ErrInvalidQuantity) {
			code = http.StatusBadRequest
		}
		writeJSON(w, code, map[string]interface{}{
			"error":        lineErr.Err.Error(),
			"line":         lineErr.Index,
			"menu_item_id": lineErr.MenuItemID,
		})
	case errors.As(err, &statusErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": domain.ErrInvalidStatus.Error(), "status": statusErr.Value})
	case errors.As(err, &transErr):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": domain.ErrInvalidTransition.Error(),
			"from":  string(transErr.From),
			"to":    string(transErr.To),
		})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderClosed),
		errors.Is(err, domain.ErrDuplicateSubmission),
		errors.Is(err, domain.ErrDuplicateTableNumber),
		errors.Is(err, domain.ErrDuplicateSlug),
		errors.Is(err, domain.ErrItemInUse):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidOrderType),
		errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
