package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/handlers"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/auth"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// --- Test Setup ---

type apiMocks struct {
	properties  *MockPropertyService
	users       *MockUserService
	favorites   *MockFavoriteService
	comparisons *MockComparisonService
	listings    *MockListingService
	dashboard   *MockDashboardService
	info        *MockPropertyInfoService
}

func setupTestRouter(t *testing.T, withInfo bool) (*gin.Engine, *config.Config, *apiMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JwtSecret: "testsecret",
		JwtTTL:    time.Hour,
	}
	m := &apiMocks{
		properties:  new(MockPropertyService),
		users:       new(MockUserService),
		favorites:   new(MockFavoriteService),
		comparisons: new(MockComparisonService),
		listings:    new(MockListingService),
		dashboard:   new(MockDashboardService),
		info:        new(MockPropertyInfoService),
	}
	svc := handlers.JsonApiServices{
		Properties:  m.properties,
		Users:       m.users,
		Favorites:   m.favorites,
		Comparisons: m.comparisons,
		Listings:    m.listings,
		Dashboard:   m.dashboard,
	}
	if withInfo {
		svc.PropertyInfo = m.info
	}
	handler := handlers.NewJsonApiHandler(cfg, svc)
	r := gin.New()
	r.POST("/v1/api", handler.HandleRequest)
	return r, cfg, m
}

func callAPI(t *testing.T, r *gin.Engine, token, method, args string) handlers.JsonApiResponse {
	t.Helper()
	reqBody := handlers.JsonApiRequest{Method: method}
	if args != "" {
		reqBody.Arguments = json.RawMessage(args)
	}
	jsonBody, _ := json.Marshal(reqBody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/api", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.JsonApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func tokenFor(t *testing.T, cfg *config.Config, userID string, isAdmin bool) string {
	t.Helper()
	token, err := auth.GenerateJWT(userID, isAdmin, cfg.JwtSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// --- Tests ---

func TestJsonApiHandler_Ping(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)
	resp := callAPI(t, router, "", "ping", "")
	assert.True(t, resp.Success)
	assert.Equal(t, "pong", resp.Data)
	assert.Empty(t, resp.Error)
}

func TestJsonApiHandler_UnknownMethodAndBadBody(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)
	resp := callAPI(t, router, "", "listInvoices", "")
	assert.False(t, resp.Success)
	assert.Equal(t, "Unknown method: listInvoices", resp.Error)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/api", bytes.NewBufferString("{not json"))
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "Invalid JSON request format")
}

func TestJsonApiHandler_SearchProperties(t *testing.T) {
	router, _, m := setupTestRouter(t, false)
	result := &services.SearchResult{Properties: []models.Property{{ID: 2}}, Description: "1 property found"}
	m.properties.On("Search", mock.Anything, mock.MatchedBy(func(c query.Criteria) bool {
		return c.PropertyType == "condo" && c.Search == "los angeles" && c.Sort == query.SortPriceDesc
	})).Return(result, nil).Once()
	m.properties.On("Search", mock.Anything, mock.MatchedBy(func(c query.Criteria) bool {
		return c.PropertyType == query.AnyType && c.Sort == query.SortPriceAsc
	})).Return(&services.SearchResult{}, nil).Twice()

	resp := callAPI(t, router, "", "searchProperties", `[{"q":"los angeles","type":"condo","sort":"price-high"}]`)
	require.True(t, resp.Success, resp.Error)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "1 property found", data["description"])

	// No arguments searches with the defaults.
	assert.True(t, callAPI(t, router, "", "searchProperties", "").Success)
	assert.True(t, callAPI(t, router, "", "searchProperties", "[]").Success)
	m.properties.AssertExpectations(t)
}

func TestJsonApiHandler_GetProperty(t *testing.T) {
	router, _, m := setupTestRouter(t, false)
	m.properties.On("Get", mock.Anything, int64(5)).Return(&models.Property{ID: 5}, nil)
	m.properties.On("Get", mock.Anything, int64(99)).Return(nil, services.ErrPropertyNotFound)
	m.properties.On("Get", mock.Anything, int64(7)).Return(nil, errors.New("socket closed"))

	resp := callAPI(t, router, "", "getProperty", `[5]`)
	assert.True(t, resp.Success)

	resp = callAPI(t, router, "", "getProperty", `[99]`)
	assert.False(t, resp.Success)
	assert.Equal(t, "Property not found", resp.Error)

	resp = callAPI(t, router, "", "getProperty", `[7]`)
	assert.Equal(t, "Failed to retrieve property", resp.Error)

	resp = callAPI(t, router, "", "getProperty", `["five"]`)
	assert.Contains(t, resp.Error, "unexpected structure")

	resp = callAPI(t, router, "", "getProperty", "")
	assert.Contains(t, resp.Error, "Missing 'arguments'")
}

func TestJsonApiHandler_SignUpAndSignIn(t *testing.T) {
	router, _, m := setupTestRouter(t, false)
	m.users.On("Register", mock.Anything, services.Registration{Email: "ann@example.com", Password: "Secret123"}).
		Return(&services.Session{Token: "tok"}, nil)
	m.users.On("Authenticate", mock.Anything, "ann@example.com", "bad").Return(nil, services.ErrInvalidCredentials)

	resp := callAPI(t, router, "", "signUp", `[{"email":"ann@example.com","password":"Secret123"}]`)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "tok", resp.Data.(map[string]interface{})["token"])

	resp = callAPI(t, router, "", "signIn", `[{"email":"ann@example.com","password":"bad"}]`)
	assert.False(t, resp.Success)
	assert.Equal(t, services.ErrInvalidCredentials.Error(), resp.Error)

	resp = callAPI(t, router, "", "signIn", `[{"email":"ann@example.com"}]`)
	assert.Equal(t, "Missing required arguments (email, password)", resp.Error)
}

func TestJsonApiHandler_AuthRequired(t *testing.T) {
	router, cfg, m := setupTestRouter(t, false)

	resp := callAPI(t, router, "", "listFavorites", "")
	assert.False(t, resp.Success)
	assert.Equal(t, "Authorization header required", resp.Error)

	resp = callAPI(t, router, "garbage", "listFavorites", "")
	assert.Equal(t, "Invalid or expired token", resp.Error)

	m.favorites.On("List", mock.Anything, "user-1").Return([]models.Property{{ID: 9}}, nil)
	resp = callAPI(t, router, tokenFor(t, cfg, "user-1", false), "listFavorites", "")
	assert.True(t, resp.Success)
	m.favorites.AssertExpectations(t)
}

func TestJsonApiHandler_FavoritesAndCompare(t *testing.T) {
	router, cfg, m := setupTestRouter(t, false)
	token := tokenFor(t, cfg, "user-1", false)

	m.favorites.On("Add", mock.Anything, "user-1", int64(9)).Return(nil).Once()
	m.favorites.On("Add", mock.Anything, "user-1", int64(9)).Return(services.ErrAlreadyFavorited).Once()
	m.favorites.On("Remove", mock.Anything, "user-1", int64(9)).Return(nil)
	m.comparisons.On("Compare", mock.Anything, "user-1", []int64{9, 10}).Return(&services.ComparisonView{Skipped: []int64{}}, nil)

	assert.True(t, callAPI(t, router, token, "addFavorite", `[9]`).Success)
	assert.Equal(t, services.ErrAlreadyFavorited.Error(), callAPI(t, router, token, "addFavorite", `[9]`).Error)
	assert.True(t, callAPI(t, router, token, "removeFavorite", `[9]`).Success)
	assert.True(t, callAPI(t, router, token, "compare", `[[9,10]]`).Success)
	assert.Equal(t, "Invalid property ID", callAPI(t, router, token, "addFavorite", `[0]`).Error)
	m.favorites.AssertExpectations(t)
	m.comparisons.AssertExpectations(t)
}

func TestJsonApiHandler_ListingUploads(t *testing.T) {
	router, cfg, m := setupTestRouter(t, false)
	token := tokenFor(t, cfg, "user-1", false)

	m.listings.On("RequestImageUpload", mock.Anything, "user-1", int64(14), "a.jpg", "image/jpeg").
		Return(&services.UploadTicket{URL: "https://s3.example/put", Key: "listings/14/a.jpg"}, nil)
	m.listings.On("CompleteImageUpload", mock.Anything, "user-1", int64(14), "listings/14/a.jpg").Return(nil)

	resp := callAPI(t, router, token, "getUploadURL", `[{"property_id":14,"filename":"a.jpg","content_type":"image/jpeg"}]`)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "listings/14/a.jpg", resp.Data.(map[string]interface{})["key"])

	resp = callAPI(t, router, token, "confirmImageUpload", `[{"property_id":14,"key":"listings/14/a.jpg"}]`)
	assert.True(t, resp.Success, resp.Error)

	resp = callAPI(t, router, token, "confirmImageUpload", `[{"property_id":14}]`)
	assert.Equal(t, "Missing required arguments (property_id, key)", resp.Error)
	m.listings.AssertExpectations(t)
}

func TestJsonApiHandler_LookupPropertyInfo(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)
	resp := callAPI(t, router, "", "lookupPropertyInfo", `[{"address":"987 Valley Drive"}]`)
	assert.Equal(t, "Property info is not available", resp.Error)

	router, _, m := setupTestRouter(t, true)
	m.info.On("Lookup", mock.Anything, "987 Valley Drive").
		Return(nil, &models.PropertyInfoStatus{Status: services.StatusFetching, Message: "Data is being gathered, check back soon."}, nil)
	resp = callAPI(t, router, "", "lookupPropertyInfo", `[{"address":"987 Valley Drive"}]`)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, services.StatusFetching, resp.Data.(map[string]interface{})["status"])
}

func TestJsonApiHandler_FlushSearchCacheRequiresAdmin(t *testing.T) {
	router, cfg, m := setupTestRouter(t, false)
	m.properties.On("FlushCache", mock.Anything).Return(4, nil)

	resp := callAPI(t, router, tokenFor(t, cfg, "user-1", false), "flushSearchCache", "")
	assert.Equal(t, "Administrator privileges required", resp.Error)

	resp = callAPI(t, router, tokenFor(t, cfg, "admin-1", true), "flushSearchCache", "")
	require.True(t, resp.Success, resp.Error)
	assert.EqualValues(t, 4, resp.Data.(map[string]interface{})["removed"])
	m.properties.AssertNumberOfCalls(t, "FlushCache", 1)
}
