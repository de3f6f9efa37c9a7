package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/auth"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

type authContextKey string

const authResultKey authContextKey = "authResult"

func getAuthFromContext(ctx context.Context) (*AuthResult, bool) {
	val, ok := ctx.Value(authResultKey).(*AuthResult)
	return val, ok
}

// JsonApiRequest defines the expected structure for JSON API requests.
type JsonApiRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// JsonApiResponse defines the structure for JSON API responses.
type JsonApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type apiMethodFunc func(c *gin.Context, args json.RawMessage) (interface{}, *ApiError)

// JsonApiHandler exposes the catalog, account and listing operations as
// methods on a single POST /v1/api endpoint.
type JsonApiHandler struct {
	cfg                 *config.Config
	propertyService     services.IPropertyService
	userService         services.IUserService
	favoriteService     services.IFavoriteService
	comparisonService   services.IComparisonService
	listingService      services.IListingService
	dashboardService    services.IDashboardService
	propertyInfoService services.IPropertyInfoService // nil when Postgres is not configured
	methods             map[string]apiMethodFunc
}

// JsonApiServices groups the services the JSON API dispatches to.
type JsonApiServices struct {
	Properties   services.IPropertyService
	Users        services.IUserService
	Favorites    services.IFavoriteService
	Comparisons  services.IComparisonService
	Listings     services.IListingService
	Dashboard    services.IDashboardService
	PropertyInfo services.IPropertyInfoService
}

// NewJsonApiHandler creates a new handler for the JSON API endpoint.
func NewJsonApiHandler(cfg *config.Config, svc JsonApiServices) *JsonApiHandler {
	h := &JsonApiHandler{
		cfg:                 cfg,
		propertyService:     svc.Properties,
		userService:         svc.Users,
		favoriteService:     svc.Favorites,
		comparisonService:   svc.Comparisons,
		listingService:      svc.Listings,
		dashboardService:    svc.Dashboard,
		propertyInfoService: svc.PropertyInfo,
	}
	h.methods = map[string]apiMethodFunc{
		"ping":               h.ping,
		"searchProperties":   h.searchProperties,
		"suggest":            h.suggest,
		"featured":           h.featured,
		"getProperty":        h.getProperty,
		"signUp":             h.signUp,
		"signIn":             h.signIn,
		"listFavorites":      h.listFavorites,
		"addFavorite":        h.addFavorite,
		"removeFavorite":     h.removeFavorite,
		"compare":            h.compare,
		"submitListing":      h.submitListing,
		"getUploadURL":       h.getUploadURL,
		"confirmImageUpload": h.confirmImageUpload,
		"getDashboard":       h.getDashboard,
		"lookupPropertyInfo": h.lookupPropertyInfo,
		"flushSearchCache":   h.flushSearchCache,
	}
	return h
}

// HandleRequest is the main entry point for POST /v1/api
func (h *JsonApiHandler) HandleRequest(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.sendErrorResponse(c, "Failed to read request body")
		return
	}

	var req JsonApiRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		h.sendErrorResponse(c, "Invalid JSON request format")
		return
	}

	handlerFunc, ok := h.methods[req.Method]
	if !ok {
		h.sendErrorResponse(c, fmt.Sprintf("Unknown method: %s", req.Method))
		return
	}

	if authErr := h.checkAuthForMethod(c, req.Method); authErr != nil {
		h.sendErrorResponse(c, authErr.Message)
		return
	}

	result, apiErr := handlerFunc(c, req.Arguments)
	if apiErr != nil {
		h.sendErrorResponse(c, apiErr.Message)
		return
	}
	h.sendSuccessResponse(c, result)
}

// AuthResult holds optional authentication details
type AuthResult struct {
	UserID  string // empty for guests
	IsAdmin bool
}

// checkAuthForMethod checks if auth is needed and validates/extracts details
// if so. It stores the AuthResult in c.Request.Context().
func (h *JsonApiHandler) checkAuthForMethod(c *gin.Context, method string) *ApiError {
	needsAuth := h.methodRequiresAuth(method)
	needsAdmin := h.methodRequiresAdmin(method)
	authRes := &AuthResult{}

	authHeader := c.GetHeader("Authorization")
	if !needsAuth && !needsAdmin {
		// Public method: an optional token identifies the caller, a bad one is ignored.
		if tokenString, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			if claims, err := auth.ValidateJWT(tokenString, h.cfg.JwtSecret); err == nil {
				authRes = &AuthResult{UserID: claims.UserID, IsAdmin: claims.IsAdmin}
			} else {
				zap.L().Debug("Invalid optional auth token", zap.String("method", method), zap.Error(err))
			}
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), authResultKey, authRes))
		return nil
	}

	if authHeader == "" {
		return NewApiError("Authorization header required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return NewApiError("Authorization header format must be Bearer {token}")
	}
	claims, err := auth.ValidateJWT(parts[1], h.cfg.JwtSecret)
	if err != nil {
		zap.L().Debug("Token validation failed", zap.String("method", method), zap.Error(err))
		return NewApiError("Invalid or expired token")
	}
	if needsAdmin && !claims.IsAdmin {
		return NewApiError("Administrator privileges required")
	}

	authRes = &AuthResult{UserID: claims.UserID, IsAdmin: claims.IsAdmin}
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), authResultKey, authRes))
	return nil
}

func (h *JsonApiHandler) methodRequiresAuth(method string) bool {
	switch method {
	case "listFavorites",
		"addFavorite",
		"removeFavorite",
		"compare",
		"submitListing",
		"getUploadURL",
		"confirmImageUpload",
		"getDashboard",
		"flushSearchCache":
		return true
	default:
		return false
	}
}

func (h *JsonApiHandler) methodRequiresAdmin(method string) bool {
	return method == "flushSearchCache"
}

func (h *JsonApiHandler) sendSuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, JsonApiResponse{Success: true, Data: data})
}

func (h *JsonApiHandler) sendErrorResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, JsonApiResponse{Success: false, Error: message})
}

type ApiError struct {
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(message string) *ApiError {
	return &ApiError{Message: message}
}

// serviceError turns a service failure into an ApiError. Known sentinels
// keep their message; anything else is logged and replaced with fallback.
func serviceError(method string, err error, fallback string) *ApiError {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("JSON API method failed", zap.String("method", method), zap.Error(err))
		return NewApiError(fallback)
	}
	return NewApiError(msg)
}

func callerID(c *gin.Context) string {
	if a, ok := getAuthFromContext(c.Request.Context()); ok {
		return a.UserID
	}
	return ""
}

func (h *JsonApiHandler) ping(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	_ = args
	return "pong", nil
}

// searchProperties takes an optional object of filter fields using the same
// names as the GET /v1/properties query parameters.
func (h *JsonApiHandler) searchProperties(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	values := url.Values{}
	if raw := strings.TrimSpace(string(args)); raw != "" && raw != "null" && raw != "[]" {
		var fields map[string]string
		if apiErr := h.parseRequiredSingleArgFromArray(args, &fields); apiErr != nil {
			return nil, apiErr
		}
		for k, v := range fields {
			values.Set(k, v)
		}
	}
	criteria := query.FromValues(values, h.propertyService.Defaults())
	res, err := h.propertyService.Search(c.Request.Context(), criteria)
	if err != nil {
		return nil, serviceError("searchProperties", err, "Failed to search properties")
	}
	return res, nil
}

func (h *JsonApiHandler) suggest(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var q string
	if apiErr := h.parseRequiredSingleArgFromArray(args, &q); apiErr != nil {
		return nil, apiErr
	}
	suggestions, err := h.propertyService.Suggest(c.Request.Context(), q)
	if err != nil {
		return nil, serviceError("suggest", err, "Failed to load suggestions")
	}
	return suggestions, nil
}

func (h *JsonApiHandler) featured(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	props, err := h.propertyService.Featured(c.Request.Context())
	if err != nil {
		return nil, serviceError("featured", err, "Failed to load featured properties")
	}
	return props, nil
}

func (h *JsonApiHandler) parsePropertyIDArg(args json.RawMessage) (int64, *ApiError) {
	var id int64
	if apiErr := h.parseRequiredSingleArgFromArray(args, &id); apiErr != nil {
		return 0, apiErr
	}
	if id <= 0 {
		return 0, NewApiError("Invalid property ID")
	}
	return id, nil
}

func (h *JsonApiHandler) getProperty(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	id, apiErr := h.parsePropertyIDArg(args)
	if apiErr != nil {
		return nil, apiErr
	}
	p, err := h.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		return nil, serviceError("getProperty", err, "Failed to retrieve property")
	}
	return p, nil
}

func (h *JsonApiHandler) signUp(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var reg services.Registration
	if apiErr := h.parseRequiredSingleArgFromArray(args, &reg); apiErr != nil {
		return nil, apiErr
	}
	if reg.Email == "" || reg.Password == "" {
		return nil, NewApiError("Missing required arguments (email, password)")
	}
	sess, err := h.userService.Register(c.Request.Context(), reg)
	if err != nil {
		return nil, serviceError("signUp", err, "Failed to create account")
	}
	return sess, nil
}

func (h *JsonApiHandler) signIn(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var req SignInRequest
	if apiErr := h.parseRequiredSingleArgFromArray(args, &req); apiErr != nil {
		return nil, apiErr
	}
	if req.Email == "" || req.Password == "" {
		return nil, NewApiError("Missing required arguments (email, password)")
	}
	sess, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return nil, serviceError("signIn", err, "Failed to sign in")
	}
	return sess, nil
}

func (h *JsonApiHandler) listFavorites(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	favs, err := h.favoriteService.List(c.Request.Context(), callerID(c))
	if err != nil {
		return nil, serviceError("listFavorites", err, "Failed to load favorites")
	}
	return favs, nil
}

func (h *JsonApiHandler) addFavorite(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	id, apiErr := h.parsePropertyIDArg(args)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := h.favoriteService.Add(c.Request.Context(), callerID(c), id); err != nil {
		return nil, serviceError("addFavorite", err, "Failed to add favorite")
	}
	return gin.H{"property_id": id}, nil
}

func (h *JsonApiHandler) removeFavorite(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	id, apiErr := h.parsePropertyIDArg(args)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := h.favoriteService.Remove(c.Request.Context(), callerID(c), id); err != nil {
		return nil, serviceError("removeFavorite", err, "Failed to remove favorite")
	}
	return gin.H{"property_id": id}, nil
}

func (h *JsonApiHandler) compare(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var ids []int64
	if apiErr := h.parseRequiredSingleArgFromArray(args, &ids); apiErr != nil {
		return nil, apiErr
	}
	if len(ids) > 4*query.MaxComparison {
		return nil, NewApiError("Too many property IDs")
	}
	view, err := h.comparisonService.Compare(c.Request.Context(), callerID(c), ids)
	if err != nil {
		return nil, serviceError("compare", err, "Failed to compare properties")
	}
	return view, nil
}

func (h *JsonApiHandler) submitListing(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var draft models.ListingDraft
	if apiErr := h.parseRequiredSingleArgFromArray(args, &draft); apiErr != nil {
		return nil, apiErr
	}
	p, err := h.listingService.Submit(c.Request.Context(), callerID(c), &draft)
	if err != nil {
		return nil, serviceError("submitListing", err, "Failed to submit listing")
	}
	return p, nil
}

// GetUploadURLArgs are the arguments of getUploadURL.
type GetUploadURLArgs struct {
	PropertyID  int64  `json:"property_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (h *JsonApiHandler) getUploadURL(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var reqArgs GetUploadURLArgs
	if apiErr := h.parseRequiredSingleArgFromArray(args, &reqArgs); apiErr != nil {
		return nil, apiErr
	}
	if reqArgs.PropertyID <= 0 || reqArgs.Filename == "" || reqArgs.ContentType == "" {
		return nil, NewApiError("Missing required arguments (property_id, filename, content_type)")
	}
	ticket, err := h.listingService.RequestImageUpload(c.Request.Context(), callerID(c),
		reqArgs.PropertyID, reqArgs.Filename, reqArgs.ContentType)
	if err != nil {
		return nil, serviceError("getUploadURL", err, "Failed to generate upload URL")
	}
	return ticket, nil
}

// ConfirmImageUploadArgs are the arguments of confirmImageUpload.
type ConfirmImageUploadArgs struct {
	PropertyID int64  `json:"property_id"`
	Key        string `json:"key"` // as returned by getUploadURL
}

func (h *JsonApiHandler) confirmImageUpload(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	var reqArgs ConfirmImageUploadArgs
	if apiErr := h.parseRequiredSingleArgFromArray(args, &reqArgs); apiErr != nil {
		return nil, apiErr
	}
	if reqArgs.PropertyID <= 0 || reqArgs.Key == "" {
		return nil, NewApiError("Missing required arguments (property_id, key)")
	}
	if err := h.listingService.CompleteImageUpload(c.Request.Context(), callerID(c), reqArgs.PropertyID, reqArgs.Key); err != nil {
		return nil, serviceError("confirmImageUpload", err, "Failed to schedule image processing")
	}
	return gin.H{"message": "Image upload confirmed, processing scheduled."}, nil
}

func (h *JsonApiHandler) getDashboard(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	dash, err := h.dashboardService.Load(c.Request.Context(), callerID(c))
	if err != nil {
		return nil, serviceError("getDashboard", err, "Failed to load dashboard")
	}
	return dash, nil
}

func (h *JsonApiHandler) lookupPropertyInfo(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	if h.propertyInfoService == nil {
		return nil, NewApiError("Property info is not available")
	}
	var req PropertyInfoRequest
	if apiErr := h.parseRequiredSingleArgFromArray(args, &req); apiErr != nil {
		return nil, apiErr
	}
	info, status, err := h.propertyInfoService.Lookup(c.Request.Context(), req.Address)
	if err != nil {
		return nil, serviceError("lookupPropertyInfo", err, "Failed to look up property info")
	}
	if status != nil {
		return status, nil
	}
	return info, nil
}

func (h *JsonApiHandler) flushSearchCache(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	n, err := h.propertyService.FlushCache(c.Request.Context())
	if err != nil {
		return nil, serviceError("flushSearchCache", err, "Failed to flush search cache")
	}
	return gin.H{"removed": n}, nil
}

// parseRequiredSingleArgFromArray takes the raw JSON message for 'arguments',
// expects it to be a JSON array with at least one element,
// and unmarshals that first element into targetVarPtr.
func (h *JsonApiHandler) parseRequiredSingleArgFromArray(rawArgPayload json.RawMessage, targetVarPtr interface{}) *ApiError {
	var argArray []json.RawMessage
	if rawArgPayload == nil {
		return NewApiError("Missing 'arguments' field; expected a JSON array with one argument.")
	}
	if err := json.Unmarshal(rawArgPayload, &argArray); err != nil {
		return NewApiError("Invalid 'arguments': expected a JSON array.")
	}
	if len(argArray) == 0 {
		return NewApiError("Invalid 'arguments': array is empty, but one argument is expected.")
	}
	if err := json.Unmarshal(argArray[0], targetVarPtr); err != nil {
		return NewApiError("Invalid format for argument: the first element in 'arguments' array has unexpected structure.")
	}
	return nil
}
