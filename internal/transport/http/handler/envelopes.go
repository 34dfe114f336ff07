package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nitrmart-api/internal/domain"
)

// DetailEnvelope is the generic single-message response body.
type DetailEnvelope struct {
	Detail string `json:"detail"`
}

// OTPVerifiedEnvelope answers a successful verify-otp call.
type OTPVerifiedEnvelope struct {
	Detail string `json:"detail"`
	Email  string `json:"email"`
}

// AccessEnvelope answers a refresh call.
type AccessEnvelope struct {
	Access string `json:"access"`
}

// UserPageEnvelope wraps cursor-paginated user lists.
type UserPageEnvelope struct {
	Results []domain.User `json:"results"`
	Next    string        `json:"next,omitempty"`
}

// ProductPageEnvelope wraps cursor-paginated listing feeds.
type ProductPageEnvelope struct {
	Results []domain.Product `json:"results"`
	Next    string           `json:"next,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, DetailEnvelope{Detail: msg})
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewFieldError(nil, "", "JSON parse error - "+err.Error())
	}
	return nil
}
