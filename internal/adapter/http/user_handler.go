package http

import (
	"github.com/gin-gonic/gin"

	"github.com/reimx/reimx-backend/internal/domain"
	"github.com/reimx/reimx-backend/internal/usecase/user"
)

// UserHandler serves registration, login, profile, and admin user listing.
type UserHandler struct {
	Users *user.Service
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{Users: users}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	DisplayName   *string `json:"display_name"`
	WalletAddress *string `json:"wallet_address"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	WalletAddress string `json:"wallet_address"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          string(u.Role),
		WalletAddress: u.WalletAddress,
	}
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	created, err := h.Users.Register(c.Request.Context(), user.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, toUserResponse(created))
}

// Login handles POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	logged, token, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"token": token, "user": toUserResponse(logged)})
}

// GetProfile handles GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.Users.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toUserResponse(profile))
}

// UpdateProfile handles PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	updated, err := h.Users.UpdateProfile(c.Request.Context(), currentUserID(c), user.UpdateProfileInput{
		DisplayName:   req.DisplayName,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toUserResponse(updated))
}

// ListUsers handles GET /api/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.ListUsers(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]userResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toUserResponse(u))
	}
	respondOK(c, responses)
}
