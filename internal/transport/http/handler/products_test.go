package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nitrmart-api/internal/application/media"
	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// multipartBody encodes fields plus one "images" part per entry in files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func authedMultipart(t *testing.T, h http.HandlerFunc, method, target, id string, u *domain.User, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	p := newTestJWTProvider(t)
	body, ct := multipartBody(t, fields, files)
	r := bearerReq(t, p, method, target, u, body.Bytes())
	r.Header.Set("Content-Type", ct)
	if id != "" {
		r = withChiID(r, id)
	}
	rr := httptest.NewRecorder()
	serveAuthed(p, h, rr, r)
	return rr
}

func listingFields() map[string]string {
	return map[string]string{
		"title":       "Study table",
		"description": "Teak, two drawers",
		"price":       "1500.50",
		"category":    "Furniture",
		"negotiable":  "true",
	}
}

func TestCreateProduct_Multipart(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Create", mock.Anything, domain.Actor{UserID: "u1", Role: domain.RoleStudent},
		mock.MatchedBy(func(in domain.ProductInput) bool {
			return *in.Title == "Study table" && *in.Price == domain.Price(150050) && *in.Negotiable && in.IsSold == nil
		}),
		mock.MatchedBy(func(files []media.File) bool {
			return len(files) == 1 && files[0].Name == "table.png" && files[0].Size == 4
		}),
	).Return(&domain.Product{ProductID: "p1", SellerID: "u1"}, nil)

	rr := authedMultipart(t, h.Create, http.MethodPost, "/v1/products", "", student, listingFields(),
		map[string][]byte{"table.png": []byte("\x89PNG")})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "p1", decodeMap(t, rr)["id"])
	svc.AssertExpectations(t)
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ValidationErrors{"price": "Price cannot be negative."})

	fields := listingFields()
	fields["price"] = "-5"
	rr := authedMultipart(t, h.Create, http.MethodPost, "/v1/products", "", student, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"price": "Price cannot be negative."}`, rr.Body.String())
}

func TestCreateProduct_UnparseableFields(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)

	fields := listingFields()
	fields["price"] = "cheap"
	fields["is_sold"] = "maybe"
	rr := authedMultipart(t, h.Create, http.MethodPost, "/v1/products", "", student, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	got := decodeMap(t, rr)
	assert.Equal(t, "A valid number is required.", got["price"])
	assert.Equal(t, "Must be a valid boolean.", got["is_sold"])
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_RequiresAuth(t *testing.T) {
	p := newTestJWTProvider(t)
	h := NewProductHandler(&mockProductSvc{})
	body, ct := multipartBody(t, listingFields(), nil)
	r := httptest.NewRequest(http.MethodPost, "/v1/products", body)
	r.Header.Set("Content-Type", ct)

	rr := httptest.NewRecorder()
	serveAuthed(p, h.Create, rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateProduct_JSON(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Update", mock.Anything, mock.Anything, "p1",
		mock.MatchedBy(func(in domain.ProductInput) bool { return in.IsSold != nil && *in.IsSold && in.Title == nil }),
		[]media.File(nil),
	).Return(&domain.Product{ProductID: "p1", IsSold: true}, nil)

	r := withChiID(bearerReq(t, p, http.MethodPut, "/v1/products/p1", student, []byte(`{"is_sold": true}`)), "p1")
	r.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	serveAuthed(p, h.Update, rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeMap(t, rr)["is_sold"])
}

func TestUpdateProduct_JSONTitleTooLong(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)

	body := []byte(`{"title": "` + strings.Repeat("x", 101) + `"}`)
	r := withChiID(bearerReq(t, p, http.MethodPut, "/v1/products/p1", student, body), "p1")
	r.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	serveAuthed(p, h.Update, rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"title": "Ensure this field has no more than 100 characters."}`, rr.Body.String())
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProduct_JSONTrimsBeforeLengthCheck(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	title := strings.Repeat("x", 100)
	svc.On("Update", mock.Anything, mock.Anything, "p1",
		mock.MatchedBy(func(in domain.ProductInput) bool { return in.Title != nil && *in.Title == title }),
		[]media.File(nil),
	).Return(&domain.Product{ProductID: "p1", Title: title}, nil)

	body := []byte(`{"title": "  ` + title + `  "}`)
	r := withChiID(bearerReq(t, p, http.MethodPut, "/v1/products/p1", student, body), "p1")
	r.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	serveAuthed(p, h.Update, rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestCreateProduct_MultipartTitleTooLong(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)

	fields := listingFields()
	fields["title"] = strings.Repeat("é", 101)
	rr := authedMultipart(t, h.Create, http.MethodPost, "/v1/products", "", student, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"title": "Ensure this field has no more than 100 characters."}`, rr.Body.String())
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProduct_NonOwner(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Update", mock.Anything, mock.Anything, "p1", mock.Anything, mock.Anything).
		Return(nil, domain.NewFieldError(domain.ErrPermissionDenied, "", "You can only edit or delete your own products."))

	rr := authedMultipart(t, h.Update, http.MethodPut, "/v1/products/p1", "p1", student, map[string]string{"title": "mine"}, nil)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"detail": "You can only edit or delete your own products."}`, rr.Body.String())
}

func TestDeleteProduct(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Delete", mock.Anything, domain.Actor{UserID: "u9", Role: domain.RoleFaculty, Elevated: true}, "p1").Return(nil)

	r := withChiID(bearerReq(t, p, http.MethodDelete, "/v1/products/p1", staffer, nil), "p1")
	rr := httptest.NewRecorder()
	serveAuthed(p, h.Delete, rr, r)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	svc.AssertExpectations(t)
}

func TestListProducts_Filters(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("List", mock.Anything, domain.ProductFilter{Category: "Electronics", SellerID: "u1", Limit: 5, Cursor: "c"}).
		Return([]domain.Product(nil), "", nil)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/products?category=Electronics&seller=u1&limit=5&cursor=c", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results": []}`, rr.Body.String())
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/products/nope", nil), "nope"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCategories(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc)
	svc.On("Categories").Return([]string{"Electronics", "Others"})

	rr := httptest.NewRecorder()
	h.Categories(rr, httptest.NewRequest(http.MethodGet, "/v1/products/categories", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["Electronics", "Others"]`, rr.Body.String())
}
