package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mazzeh-api/middleware"
	"mazzeh-api/models"
)

const duplicatePhone = "A user with this phone number already exists."

type CustomerSignupRequest struct {
	PhoneNumber string               `json:"phone_number" binding:"required,max=15,phone"`
	FirstName   string               `json:"first_name" binding:"required,max=30"`
	LastName    string               `json:"last_name" binding:"required,max=30"`
	Password    string               `json:"password" binding:"required"`
	State       models.ApprovalState `json:"state" binding:"omitempty,enum"`
}

type RestaurantSignupRequest struct {
	PhoneNumber  string              `json:"phone_number" binding:"required,max=15,phone"`
	Password     string              `json:"password" binding:"required"`
	Name         string              `json:"name" binding:"required,max=255"`
	BusinessType models.BusinessType `json:"business_type" binding:"required,enum"`
	CityName     string              `json:"city_name" binding:"required,max=255"`
}

type TokenRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// phoneTaken answers the request and reports true when signup cannot go on with phone.
func (h *Handler) phoneTaken(c *gin.Context, phone string) bool {
	var count int64
	if err := h.db.Model(&models.User{}).Where("phone_number = ?", phone).Count(&count).Error; err != nil {
		h.internalError(c, err, "Failed to check phone number")
		return true
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"phone_number": []string{duplicatePhone}})
		return true
	}
	return false
}

// createUser stores user with its profile in one transaction.
func (h *Handler) createUser(c *gin.Context, user *models.User, password string) bool {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(c, err, "Failed to hash password")
		return false
	}
	user.PasswordHash = string(hash)
	user.IsActive = true

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	}); err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusBadRequest, gin.H{"phone_number": []string{duplicatePhone}})
			return false
		}
		h.internalError(c, err, "Failed to create user")
		return false
	}
	return true
}

// SignupCustomer creates a customer account. State defaults to approved.
func (h *Handler) SignupCustomer(c *gin.Context) {
	var req CustomerSignupRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.phoneTaken(c, req.PhoneNumber) {
		return
	}

	state := req.State
	if state == "" {
		state = models.StateApproved
	}
	user := models.User{
		PhoneNumber:     req.PhoneNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            models.RoleCustomer,
		CustomerProfile: &models.CustomerProfile{State: state},
	}
	if !h.createUser(c, &user, req.Password) {
		return
	}

	h.log.WithField("user_id", user.ID).Info("customer signed up")
	c.JSON(http.StatusCreated, gin.H{"message": "Customer created successfully"})
}

// SignupRestaurant creates a manager with its restaurant, always pending approval.
func (h *Handler) SignupRestaurant(c *gin.Context) {
	var req RestaurantSignupRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.phoneTaken(c, req.PhoneNumber) {
		return
	}

	user := models.User{
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleRestaurantManager,
		RestaurantProfile: &models.RestaurantProfile{
			Name:         req.Name,
			BusinessType: req.BusinessType,
			CityName:     req.CityName,
			State:        models.StatePending,
			OpenHour:     models.DefaultOpenHour,
			CloseHour:    models.DefaultCloseHour,
		},
	}
	if !h.createUser(c, &user, req.Password) {
		return
	}

	h.log.WithField("user_id", user.ID).Info("restaurant manager signed up")
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant Manager created successfully"})
}

// Token exchanges credentials for an access/refresh pair.
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	badCredentials := gin.H{"error": "No active account found with the given credentials"}

	var user models.User
	if err := h.db.Where("phone_number = ?", req.PhoneNumber).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, badCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, badCredentials)
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, badCredentials)
		return
	}

	pair, err := h.tokens.Issue(&user)
	if err != nil {
		h.internalError(c, err, "Failed to generate token")
		return
	}
	resp := gin.H{"access": pair.Access, "refresh": pair.Refresh}

	if user.Role == models.RoleRestaurantManager {
		var restaurant models.RestaurantProfile
		if err := h.db.Where("manager_id = ?", user.ID).First(&restaurant).Error; err != nil {
			h.internalError(c, err, "Failed to load restaurant")
			return
		}
		resp["restaurant_id"] = restaurant.ID
		resp["state"] = restaurant.State
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshToken hands out a new access token for a valid refresh token.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	claims, err := h.tokens.Parse(req.Refresh, middleware.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}

	var user models.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}

	access, err := h.tokens.Access(claims)
	if err != nil {
		h.internalError(c, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// ChangePassword replaces the caller's password after checking the old one.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	if err := h.db.First(&user, middleware.GetUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Old password is incorrect."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(c, err, "Failed to hash password")
		return
	}
	if err := h.db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		h.internalError(c, err, "Failed to update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (h *Handler) TestAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Authentication successful!"})
}

// GetProfile returns the authenticated user together with its role profile
func (h *Handler) GetProfile(c *gin.Context) {
	var user models.User
	err := h.db.Preload("CustomerProfile").Preload("RestaurantProfile").First(&user, middleware.GetUserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
