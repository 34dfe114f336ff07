package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Categories is the closed set of listing categories, in display order.
var Categories = []string{
	"Electronics",
	"Books & Study Materials",
	"Hostel Essentials",
	"Furniture",
	"Sports & Fitness",
	"Cycle & Transport",
	"Room Decor",
	"Lab Equipment",
	"Others",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// MaxPrice is the largest price a listing may carry (decimal(10,2)).
const MaxPrice Price = 99_999_999_99

// Price is an amount in paise. It renders as a two-decimal string.
type Price int64

var errPriceFormat = errors.New("a valid number is required")

// ParsePrice parses "12", "12.5" or "12.50" into a Price. The sign is kept so
// callers can report negative prices distinctly.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errPriceFormat
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, errPriceFormat
	}
	if len(frac) > 2 {
		return 0, errors.New("ensure that there are no more than 2 decimal places")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 40)
	if err != nil {
		return 0, errPriceFormat
	}
	f, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, errPriceFormat
	}
	p := Price(w*100 + f)
	if neg {
		p = -p
	}
	return p, nil
}

func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts both a JSON string and a JSON number.
func (p *Price) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type Product struct {
	ProductID   string         `json:"id" dynamodbav:"product_id"`
	Title       string         `json:"title" dynamodbav:"title"`
	Description string         `json:"description" dynamodbav:"description"`
	Price       Price          `json:"price" dynamodbav:"price"`
	Negotiable  bool           `json:"negotiable" dynamodbav:"negotiable"`
	Category    string         `json:"category" dynamodbav:"category"`
	SellerID    string         `json:"seller" dynamodbav:"seller_id"`
	SellerName  string         `json:"seller_name" dynamodbav:"seller_name"`
	IsSold      bool           `json:"is_sold" dynamodbav:"is_sold"`
	PostedAt    time.Time      `json:"posted_at" dynamodbav:"posted_at"`
	UpdatedAt   time.Time      `json:"updated_at" dynamodbav:"updated_at"`
	Images      []ProductImage `json:"images" dynamodbav:"-"`
}

// OwnerID makes a listing an owned resource: the seller owns it.
func (p *Product) OwnerID() string { return p.SellerID }

type ProductImage struct {
	ImageID     string    `json:"id" dynamodbav:"image_id"`
	ProductID   string    `json:"-" dynamodbav:"product_id"`
	Object      string    `json:"-" dynamodbav:"object"`
	URL         string    `json:"image" dynamodbav:"url"`
	ContentType string    `json:"content_type" dynamodbav:"content_type"`
	Size        int64     `json:"size" dynamodbav:"size"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}

// ProductInput carries the writable listing fields. Nil means "not supplied".
type ProductInput struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Price       *Price  `json:"price"`
	Negotiable  *bool   `json:"negotiable"`
	Category    *string `json:"category"`
	IsSold      *bool   `json:"is_sold"`
}

// ProductFilter narrows the public feed.
type ProductFilter struct {
	Category string
	SellerID string
	Limit    int
	Cursor   string
}
