package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"healteex/api/internal/models"
)

func performWithUser(t *testing.T, user any, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	router := gin.New()
	router.GET("/protected", func(c *gin.Context) {
		if user != nil {
			c.Set("current_user", user)
		}
		c.Next()
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	handler := RequireRoles(models.RoleSuperAdmin)
	w := performWithUser(t, models.User{ID: "u1", Role: models.RoleSuperAdmin}, handler)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	handler := RequireRoles(models.RoleSuperAdmin)
	w := performWithUser(t, models.User{ID: "u1", Role: models.RolePharmacist}, handler)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsAnonymous(t *testing.T) {
	handler := RequireRoles(models.RoleSuperAdmin)
	w := performWithUser(t, nil, handler)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSplitAuthHeader(t *testing.T) {
	scheme, credential, ok := splitAuthHeader("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "Bearer", scheme)
	assert.Equal(t, "abc.def.ghi", credential)

	scheme, credential, ok = splitAuthHeader("Token deadbeef")
	assert.True(t, ok)
	assert.Equal(t, "Token", scheme)
	assert.Equal(t, "deadbeef", credential)

	_, _, ok = splitAuthHeader("")
	assert.False(t, ok)

	_, _, ok = splitAuthHeader("Bearer")
	assert.False(t, ok)
}
