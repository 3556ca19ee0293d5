package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mazzeh-api/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", time.Minute, time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	issuer := testIssuer()
	user := &models.User{ID: 7, Role: models.RoleRestaurantManager}

	pair, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := issuer.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleRestaurantManager, claims.Role)

	_, err = issuer.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	refreshClaims, err := issuer.Parse(pair.Refresh, RefreshToken)
	require.NoError(t, err)

	access, err := issuer.Access(refreshClaims)
	require.NoError(t, err)
	_, err = issuer.Parse(access, AccessToken)
	assert.NoError(t, err)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := testIssuer()
	user := &models.User{ID: 1, Role: models.RoleCustomer}

	other := NewTokenIssuer("other-secret", time.Minute, time.Hour)
	pair, err := other.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired := NewTokenIssuer("test-secret", -time.Minute, -time.Minute)
	pair, err = expired.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = issuer.Parse("not-a-token", AccessToken)
	assert.Error(t, err)
}

func newRouter(issuer *TokenIssuer, caps ...models.Capability) *gin.Engine {
	r := gin.New()
	r.GET("/private", AuthRequired(issuer), CapabilityRequired(caps...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	issuer := testIssuer()
	r := newRouter(issuer)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer abc").Code)

	pair, err := issuer.Issue(&models.User{ID: 3, Role: models.RoleCustomer})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+pair.Refresh).Code)

	w := get(r, "Bearer "+pair.Access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 3, "role": "customer"}`, w.Body.String())
}

func TestCapabilityRequired(t *testing.T) {
	issuer := testIssuer()
	r := newRouter(issuer, models.CapManageRestaurant)

	customer, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleCustomer})
	require.NoError(t, err)
	manager, err := issuer.Issue(&models.User{ID: 2, Role: models.RoleRestaurantManager})
	require.NoError(t, err)
	admin, err := issuer.Issue(&models.User{ID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+customer.Access).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+admin.Access).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+manager.Access).Code)
}
