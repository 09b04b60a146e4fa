package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authdomain "teamtodo-backend/internal/auth/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) ValidateToken(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthUsecase) Me(ctx context.Context, userID string) (*authdomain.User, error) {
	args := m.Called(ctx, userID)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*authdomain.User), args.Error(1)
}

func (m *MockAuthUsecase) RegisterFCMToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockAuthUsecase) UnregisterFCMToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func setupRouter(uc *MockAuthUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(uc), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", status: http.StatusOK, body: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockAuthUsecase)
			uc.On("ValidateToken", mock.Anything, "good").Return("u1", nil)
			uc.On("ValidateToken", mock.Anything, "bad").Return("", authdomain.ErrInvalidToken)

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRegisterFCMToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uc := new(MockAuthUsecase)
	uc.On("ValidateToken", mock.Anything, "good").Return("u1", nil)
	uc.On("RegisterFCMToken", mock.Anything, "u1", "device-token").Return(nil).Once()

	r := gin.New()
	r.POST("/api/fcm/register", AuthMiddleware(uc), NewAuthHandler(uc).RegisterFCMToken)

	req := httptest.NewRequest(http.MethodPost, "/api/fcm/register", strings.NewReader(`{"token": "device-token"}`))
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}
