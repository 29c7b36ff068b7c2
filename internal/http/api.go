package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contact-keeper/internal/domain"
	"contact-keeper/internal/service"
	"contact-keeper/internal/storage"
)

const userIDKey = "userID"

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	contacts service.ContactService
	storage  storage.Service
	bucket   string
	prefix   string
	log      *logrus.Logger
}

func NewHandler(auth service.AuthService, contacts service.ContactService, store storage.Service, bucket, prefix string, log *logrus.Logger) *Handler {
	return &Handler{
		auth:     auth,
		contacts: contacts,
		storage:  store,
		bucket:   bucket,
		prefix:   prefix,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/users", h.register)
		api.POST("/auth", h.login)
		api.GET("/auth", h.authRequired(), h.currentUser)

		contacts := api.Group("/contacts", h.authRequired())
		{
			contacts.GET("", h.listContacts)
			contacts.POST("", h.createContact)
			contacts.PUT("/:id", h.updateContact)
			contacts.DELETE("/:id", h.deleteContact)
			contacts.POST("/export", h.exportContacts)
			contacts.GET("/exports", h.listExports)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired resolves the bearer token before any contact route runs.
// Requests with a missing or invalid token never reach the services.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token, authorization denied"})
			return
		}

		userID, err := h.auth.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is not valid"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), c.GetInt64(userIDKey))
	if err != nil {
		// A valid token naming a deleted user is treated as unauthenticated.
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token is not valid"})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

type createContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

// updateContactRequest uses pointers so absent fields are distinguishable from
// fields explicitly set to the empty string.
type updateContactRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Type  *string `json:"type"`
}

func (h *Handler) listContacts(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), c.GetInt64(userIDKey))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ContactResponse, len(contacts))
	for i := range contacts {
		resp[i] = contactToResponse(contacts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), c.GetInt64(userIDKey), req.Name, req.Email, req.Phone, req.Type)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, contactToResponse(*contact))
}

func (h *Handler) updateContact(c *gin.Context) {
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := domain.ContactPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Type:  req.Type,
	}

	contact, err := h.contacts.Update(c.Request.Context(), c.GetInt64(userIDKey), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, contactToResponse(*contact))
}

func (h *Handler) deleteContact(c *gin.Context) {
	contact, err := h.contacts.Delete(c.Request.Context(), c.GetInt64(userIDKey), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": fmt.Sprintf("%s deleted", contact.Name)})
}

func (h *Handler) exportContacts(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
		return
	}

	userID := c.GetInt64(userIDKey)
	contacts, err := h.contacts.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	snapshot := make([]ContactResponse, len(contacts))
	for i := range contacts {
		snapshot[i] = contactToResponse(contacts[i])
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		h.writeError(c, err)
		return
	}

	key := fmt.Sprintf("user-%d/contacts-%s.json", userID, time.Now().UTC().Format("20060102T150405Z"))
	location, err := h.storage.UploadSnapshot(c.Request.Context(), key, bytes.NewReader(body), storage.UploadOptions{
		Bucket:    h.bucket,
		KeyPrefix: h.prefix,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location, "count": len(contacts)})
}

// listExports returns the caller's past snapshots. Keys embed the upload
// timestamp, so lexicographic order is chronological.
func (h *Handler) listExports(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
		return
	}

	prefix := fmt.Sprintf("user-%d/", c.GetInt64(userIDKey))
	if p := strings.Trim(h.prefix, "/"); p != "" {
		prefix = p + "/" + prefix
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps domain errors to status codes. Unclassified failures return a
// generic body; the detail goes to the operator log only.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is not valid"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type ContactResponse struct {
	ID        string `json:"id"`
	Owner     int64  `json:"owner"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func contactToResponse(contact domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        contact.ID,
		Owner:     contact.OwnerID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Type:      contact.Type,
		CreatedAt: contact.CreatedAt.Format(time.RFC3339),
	}
}
