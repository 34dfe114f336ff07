package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nitrmart-api/internal/application/auth"
	"github.com/nitrmart-api/internal/application/media"
	"github.com/nitrmart-api/internal/config"
	"github.com/nitrmart-api/internal/domain"
	jwtinfra "github.com/nitrmart-api/internal/infrastructure/jwt"
	"github.com/nitrmart-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) UpdateUser(ctx context.Context, actor domain.Actor, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, actor, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) CheckPassword(u *domain.User, candidate string) bool {
	return m.Called(u, candidate).Bool(0)
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	users, _ := args.Get(0).([]domain.User)
	return users, args.String(1), args.Error(2)
}

func (m *mockUserSvc) CheckEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUserSvc) MarkVerified(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserSvc) VerifyOTP(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	args := m.Called(ctx, email, code)
	if v, _ := args.Get(0).(*domain.OTPVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUserSvc) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) otpResult(args mock.Arguments) (*domain.OTPVerification, error) {
	if v, _ := args.Get(0).(*domain.OTPVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) Send(ctx context.Context, email string) (*domain.OTPVerification, error) {
	return m.otpResult(m.Called(ctx, email))
}

func (m *mockOTPSvc) SendForRegistration(ctx context.Context, email string) (*domain.OTPVerification, error) {
	return m.otpResult(m.Called(ctx, email))
}

func (m *mockOTPSvc) Verify(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	return m.otpResult(m.Called(ctx, email, code))
}

func (m *mockOTPSvc) ConsumeForRegistration(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	return m.otpResult(m.Called(ctx, email, code))
}

func (m *mockOTPSvc) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) pair(args mock.Arguments) (*auth.TokenPair, error) {
	if p, _ := args.Get(0).(*auth.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	return m.pair(m.Called(ctx, email, password))
}

func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockAuthSvc) Revoke(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockAuthSvc) LoginWithGoogle(ctx context.Context, idToken string) (*auth.TokenPair, error) {
	return m.pair(m.Called(ctx, idToken))
}

type mockProductSvc struct{ mock.Mock }

func (m *mockProductSvc) product(args mock.Arguments) (*domain.Product, error) {
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductSvc) Create(ctx context.Context, actor domain.Actor, in domain.ProductInput, images []media.File) (*domain.Product, error) {
	return m.product(m.Called(ctx, actor, in, images))
}

func (m *mockProductSvc) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	args := m.Called(ctx, f)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.String(1), args.Error(2)
}

func (m *mockProductSvc) Get(ctx context.Context, productID string) (*domain.Product, error) {
	return m.product(m.Called(ctx, productID))
}

func (m *mockProductSvc) Update(ctx context.Context, actor domain.Actor, productID string, in domain.ProductInput, images []media.File) (*domain.Product, error) {
	return m.product(m.Called(ctx, actor, productID, in, images))
}

func (m *mockProductSvc) Delete(ctx context.Context, actor domain.Actor, productID string) error {
	return m.Called(ctx, actor, productID).Error(0)
}

func (m *mockProductSvc) Categories() []string {
	return m.Called().Get(0).([]string)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

var (
	student = &domain.User{UserID: "u1", Email: "s@nitrkl.ac.in", Role: domain.RoleStudent}
	staffer = &domain.User{UserID: "u9", Email: "f@nitrkl.ac.in", Role: domain.RoleFaculty, Staff: true}
)

// bearerReq builds a request carrying a signed access token for u.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target string, u *domain.User, body []byte) *http.Request {
	t.Helper()
	token, err := p.SignAccess(u)
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func jsonBody(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}
