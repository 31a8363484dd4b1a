package server

import (
	"net/http"
	"testing"

	"cupboard/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managerCookie(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()
	env.addUser(t, "admin", "admin123", types.RoleManager)
	return env.login(t, "admin", "admin123")
}

func helperCookie(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()
	env.addUser(t, "maria", "secret123", types.RoleHelper)
	return env.login(t, "maria", "secret123")
}

func TestNeedsRequireAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/needs", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateNeedIsManagerOnly(t *testing.T) {
	env := newTestEnv(t)
	cookie := helperCookie(t, env)

	rr := env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "cost": 10, "quantity": 5,
	}, cookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateNeedRequiresNameCostQuantity(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "quantity": 5,
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "cost": -1, "quantity": 5,
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateNeedDefaultsAndFieldNames(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "cost": 10, "quantity": 5,
	}, cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	var raw map[string]any
	decodeBody(t, rr, &raw)

	for _, key := range []string{
		"id", "name", "description", "cost", "quantity", "category",
		"priority", "is_time_sensitive", "deadline", "frequency_count",
		"created_at", "updated_at", "address", "latitude", "longitude",
	} {
		assert.Contains(t, raw, key)
	}

	assert.Equal(t, "Other", raw["category"])
	assert.Equal(t, "Medium", raw["priority"])
	assert.Equal(t, false, raw["is_time_sensitive"])
}

func TestGetNeedIncludesFundingProgress(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "cost": 10, "quantity": 5,
	}, cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created types.Need
	decodeBody(t, rr, &created)

	rr = env.do(t, http.MethodGet, "/needs/"+created.ID, nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	decodeBody(t, rr, &raw)

	assert.Equal(t, 0.0, raw["amountRaised"])
	assert.Equal(t, 50.0, raw["amountLeft"])
	assert.Equal(t, 50.0, raw["totalGoal"])
	assert.Equal(t, 0.0, raw["progressPercentage"])
}

func TestGetNeedNotFound(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodGet, "/needs/missing", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListNeedsOrdersByPriority(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	for _, n := range []map[string]any{
		{"name": "Toothpaste", "cost": 1.75, "quantity": 80, "priority": "Low"},
		{"name": "Blankets", "cost": 10, "quantity": 5, "priority": "High"},
		{"name": "Canned Soup", "cost": 2.5, "quantity": 120, "priority": "Medium"},
	} {
		rr := env.do(t, http.MethodPost, "/needs", n, cookie)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/needs/priority", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	var needs []types.Need
	decodeBody(t, rr, &needs)
	require.Len(t, needs, 3)
	assert.Equal(t, "Blankets", needs[0].Name)
	assert.Equal(t, "Canned Soup", needs[1].Name)
	assert.Equal(t, "Toothpaste", needs[2].Name)
}

func TestSearchNeedsRequiresQuery(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodGet, "/needs/search", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchNeedsMatchesNameOrDescription(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	for _, n := range []map[string]any{
		{"name": "Blankets", "description": "warm fleece", "cost": 10, "quantity": 5},
		{"name": "Canned Soup", "description": "hearty and WARM", "cost": 2.5, "quantity": 120},
		{"name": "Toothpaste", "description": "travel size", "cost": 1.75, "quantity": 80},
	} {
		rr := env.do(t, http.MethodPost, "/needs", n, cookie)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/needs/search?q=warm", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	var needs []types.Need
	decodeBody(t, rr, &needs)
	assert.Len(t, needs, 2)
}

func TestNeedsByCategoryRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodGet, "/needs/category/Gadgets", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateNeedMergesFields(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "description": "warm fleece", "cost": 10, "quantity": 5,
	}, cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created types.Need
	decodeBody(t, rr, &created)

	rr = env.do(t, http.MethodPut, "/needs/"+created.ID, map[string]any{
		"quantity": 8,
	}, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated types.Need
	decodeBody(t, rr, &updated)
	assert.Equal(t, 8, updated.Quantity)
	assert.Equal(t, "Blankets", updated.Name)
	assert.Equal(t, "warm fleece", updated.Description)
	assert.Equal(t, 10.0, updated.Cost)
}

func TestDeleteNeed(t *testing.T) {
	env := newTestEnv(t)
	cookie := managerCookie(t, env)

	rr := env.do(t, http.MethodPost, "/needs", map[string]any{
		"name": "Blankets", "cost": 10, "quantity": 5,
	}, cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created types.Need
	decodeBody(t, rr, &created)

	rr = env.do(t, http.MethodDelete, "/needs/"+created.ID, nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodDelete, "/needs/"+created.ID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
