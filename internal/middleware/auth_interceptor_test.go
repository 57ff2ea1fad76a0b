package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fotitos/backend/internal/auth"
	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubPostRepo serves a single post, which is all the ownership gate reads
type stubPostRepo struct {
	post *models.Post
}

func (r *stubPostRepo) Query(ctx context.Context, page, limit int64, flair string) ([]models.Post, error) {
	return nil, nil
}

func (r *stubPostRepo) QueryByID(ctx context.Context, id string) (*models.Post, error) {
	if r.post == nil || r.post.ID.Hex() != id {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the query")
	}
	return r.post, nil
}

func (r *stubPostRepo) Search(ctx context.Context, field string, value interface{}) ([]models.Post, error) {
	return nil, nil
}

func (r *stubPostRepo) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	return post, nil
}

func (r *stubPostRepo) Update(ctx context.Context, id string, data bson.M) (*models.Post, error) {
	return nil, nil
}

func (r *stubPostRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *stubPostRepo) Count(ctx context.Context, flair string) (int64, error) { return 0, nil }

func (r *stubPostRepo) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	return nil, nil
}

func newTestContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func nextRecorder(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return nil
	}
}

func TestLoggedRejectsBadHeaders(t *testing.T) {
	tokens := auth.NewTokenService("test-secret")
	interceptor := NewAuthInterceptor(tokens, &stubPostRepo{})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "non-bearer scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "bearer without token", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer not-a-token", wantStatus: auth.StatusInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(tt.header)
			called := false

			err := interceptor.Logged(nextRecorder(&called))(c)

			require.Error(t, err)
			httpErr, ok := err.(*httperror.HttpError)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.False(t, called)
		})
	}
}

func TestLoggedAttachesClaims(t *testing.T) {
	tokens := auth.NewTokenService("test-secret")
	interceptor := NewAuthInterceptor(tokens, &stubPostRepo{})

	token, err := tokens.CreateToken(&models.JwtCustomClaims{ID: "abc123", UserName: "javi"})
	require.NoError(t, err)

	c, _ := newTestContext("Bearer " + token)
	called := false

	require.NoError(t, interceptor.Logged(nextRecorder(&called))(c))
	assert.True(t, called)

	claims, ok := GetClaims(c)
	require.True(t, ok)
	assert.Equal(t, "abc123", claims.ID)
	assert.Equal(t, "javi", claims.UserName)
}

func TestAuthorizedMissingClaims(t *testing.T) {
	interceptor := NewAuthInterceptor(auth.NewTokenService("test-secret"), &stubPostRepo{})

	c, _ := newTestContext("")
	called := false

	err := interceptor.Authorized(nextRecorder(&called))(c)

	require.Error(t, err)
	httpErr, ok := err.(*httperror.HttpError)
	require.True(t, ok)
	assert.Equal(t, auth.StatusInvalidToken, httpErr.Status)
	assert.Equal(t, "Token not found", httpErr.StatusMessage)
	assert.False(t, called)
}

func TestAuthorizedOwnershipGate(t *testing.T) {
	ownerID := primitive.NewObjectID()
	post := &models.Post{
		ID:    primitive.NewObjectID(),
		Owner: &models.User{ID: ownerID},
	}
	interceptor := NewAuthInterceptor(auth.NewTokenService("test-secret"), &stubPostRepo{post: post})

	setup := func(claimsID string) (echo.Context, *bool) {
		c, _ := newTestContext("")
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())
		c.Set(ClaimsKey, &models.JwtCustomClaims{ID: claimsID})
		called := false
		return c, &called
	}

	t.Run("mismatched owner", func(t *testing.T) {
		c, called := setup(primitive.NewObjectID().Hex())

		err := interceptor.Authorized(nextRecorder(called))(c)

		require.Error(t, err)
		httpErr, ok := err.(*httperror.HttpError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
		assert.False(t, *called)
	})

	t.Run("matching owner", func(t *testing.T) {
		c, called := setup(ownerID.Hex())

		require.NoError(t, interceptor.Authorized(nextRecorder(called))(c))
		assert.True(t, *called)
	})

	t.Run("unknown post", func(t *testing.T) {
		c, called := setup(ownerID.Hex())
		c.SetParamValues(primitive.NewObjectID().Hex())

		err := interceptor.Authorized(nextRecorder(called))(c)

		require.Error(t, err)
		httpErr, ok := err.(*httperror.HttpError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.False(t, *called)
	})
}
