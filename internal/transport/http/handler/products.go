package handler

import (
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nitrmart-api/internal/application/media"
	"github.com/nitrmart-api/internal/application/product"
	"github.com/nitrmart-api/internal/domain"
	"github.com/nitrmart-api/internal/pkg/validate"
	"github.com/nitrmart-api/internal/transport/http/middleware"
)

const (
	formImages    = "images"
	formMemory    = 8 << 20
	maxUploadBody = media.MaxImagesPerListing*media.MaxImageSize + 1<<20
)

// ProductHandler serves the listing endpoints.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler { return &ProductHandler{svc: svc} }

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	products, next, err := h.svc.List(r.Context(), domain.ProductFilter{
		Category: q.Get("category"),
		SellerID: q.Get("seller"),
		Limit:    limit,
		Cursor:   q.Get("cursor"),
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, ProductPageEnvelope{Results: products, Next: next})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, files, cleanup, err := parseProductForm(w, r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	defer cleanup()
	if err := checkInput(&in); err != nil {
		httpError(w, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), in, files)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update accepts multipart (fields plus replacement images) or a JSON body.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var (
		in    domain.ProductInput
		files []media.File
	)
	if isMultipart(r) {
		var (
			cleanup func()
			err     error
		)
		in, files, cleanup, err = parseProductForm(w, r)
		if err != nil {
			httpError(w, r, err)
			return
		}
		defer cleanup()
	} else if err := decodeJSON(r, &in); err != nil {
		httpError(w, r, err)
		return
	}
	if err := checkInput(&in); err != nil {
		httpError(w, r, err)
		return
	}
	p, err := h.svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), in, files)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkInput trims the free-text fields and applies the ProductInput tags.
func checkInput(in *domain.ProductInput) error {
	for _, s := range []*string{in.Title, in.Description} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	return validate.Struct(in)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// parseProductForm reads listing fields and the images parts from a multipart
// body. The returned cleanup closes every opened part.
func parseProductForm(w http.ResponseWriter, r *http.Request) (domain.ProductInput, []media.File, func(), error) {
	var in domain.ProductInput
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		return in, nil, noop, domain.NewFieldError(nil, "", "Multipart form parse error - "+err.Error())
	}

	errs := domain.ValidationErrors{}
	form := r.MultipartForm.Value
	if v, ok := formValue(form, "title"); ok {
		in.Title = &v
	}
	if v, ok := formValue(form, "description"); ok {
		in.Description = &v
	}
	if v, ok := formValue(form, "category"); ok {
		in.Category = &v
	}
	if v, ok := formValue(form, "price"); ok {
		p, err := domain.ParsePrice(v)
		if err != nil {
			errs["price"] = "A valid number is required."
		} else {
			in.Price = &p
		}
	}
	for _, field := range []string{"negotiable", "is_sold"} {
		v, ok := formValue(form, field)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			errs[field] = "Must be a valid boolean."
			continue
		}
		if field == "negotiable" {
			in.Negotiable = &b
		} else {
			in.IsSold = &b
		}
	}
	if len(errs) > 0 {
		return in, nil, noop, errs
	}

	headers := r.MultipartForm.File[formImages]
	files := make([]media.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return in, nil, noop, domain.NewFieldError(nil, formImages, "The submitted file could not be read.")
		}
		opened = append(opened, f)
		files = append(files, media.File{Name: fh.Filename, Size: fh.Size, Body: f})
	}
	return in, files, cleanup, nil
}

func formValue(form map[string][]string, key string) (string, bool) {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
