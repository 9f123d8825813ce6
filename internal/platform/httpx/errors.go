package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by domain packages.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("upstream unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Mapping pairs domain errors with the HTTP status they surface as.
type Mapping struct {
	Err    error
	Status int
	Title  string
}

var defaultMappings = []Mapping{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrDuplicate, http.StatusConflict, "Duplicate"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrConflict, http.StatusConflict, "Conflict"},
	{ErrUnavailable, http.StatusBadGateway, "Upstream Unavailable"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
}

// RespondError maps err to a problem response. Package mappings are checked
// before the shared sentinels; anything unmatched becomes a 500 without detail.
func RespondError(w http.ResponseWriter, err error, mappings ...Mapping) {
	for _, m := range append(mappings, defaultMappings...) {
		if errors.Is(err, m.Err) {
			Problem(w, m.Status, m.Title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
