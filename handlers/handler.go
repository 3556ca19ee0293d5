package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mazzeh-api/media"
	"mazzeh-api/middleware"
	"mazzeh-api/models"
	"mazzeh-api/scoring"
)

type APILogHook struct{}

func (h *APILogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "API: " + entry.Message
	return nil
}

func (h *APILogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Handler serves every HTTP endpoint of the marketplace.
type Handler struct {
	db     *gorm.DB
	tokens *middleware.TokenIssuer
	scores *scoring.Scorer
	media  *media.Store
	log    *logrus.Entry
}

func New(db *gorm.DB, tokens *middleware.TokenIssuer, scores *scoring.Scorer, store *media.Store, log *logrus.Entry) *Handler {
	registerValidators()
	return &Handler{
		db:     db,
		tokens: tokens,
		scores: scores,
		media:  store,
		log:    log,
	}
}

func (h *Handler) internalError(c *gin.Context, err error, msg string) {
	h.log.WithError(err).WithField("path", c.FullPath()).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// paramID parses a numeric path parameter, answering 404 when it is not a valid id.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return uint(id), true
}

// customer loads the calling customer with its profile.
func (h *Handler) customer(c *gin.Context) (*models.CustomerAccount, bool) {
	acc, ok := h.account(c)
	if !ok {
		return nil, false
	}
	cust, isCustomer := acc.(*models.CustomerAccount)
	if !isCustomer {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
		return nil, false
	}
	return cust, true
}

// managedRestaurant loads the restaurant owned by the calling manager.
func (h *Handler) managedRestaurant(c *gin.Context) (*models.RestaurantProfile, bool) {
	acc, ok := h.account(c)
	if !ok {
		return nil, false
	}
	mgr, isManager := acc.(*models.ManagerAccount)
	if !isManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
		return nil, false
	}
	return mgr.Restaurant, true
}

func (h *Handler) account(c *gin.Context) (models.Account, bool) {
	acc, err := models.LoadAccount(h.db, middleware.GetUserID(c))
	switch {
	case err == nil:
		return acc, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
	case errors.Is(err, models.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No profile found for your account"})
	default:
		h.internalError(c, err, "Failed to load account")
	}
	return nil, false
}
