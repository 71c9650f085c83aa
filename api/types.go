package api

import (
	"time"

	"github.com/rpupo63/portfolio-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	adminHandler   adminHandler
	contactHandler contactHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// ProjectCollection is the gallery as returned to the page
type ProjectCollection struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
}

// StatusResponse is a plain success acknowledgement
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"project deleted successfully"`
}

// LoginRequest carries the admin password
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the admin bearer token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsAdmin   bool      `json:"isAdmin"`
}

// AdminStatusResponse reports whether the admin session is open
type AdminStatusResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// ImageUploadResponse carries the public URL of an uploaded image
type ImageUploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Loading bool   `json:"loading"`
}
