package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mazzeh-api/config"
	"mazzeh-api/logger"
	"mazzeh-api/models"
)

var (
	suPhone     string
	suPassword  string
	suFirstName string
	suLastName  string
)

var ErrMissingCredentials = errors.New("phone number and password are required")

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an admin account",
	Long: `Create an admin account that can moderate users, restaurants and orders.

Example:
  mazzeh createsuperuser --phone 0999000000 --password secret --first-name Site`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		log := logger.NewLogger(cfg.Log.Level, &logger.MainLogHook{})

		db, err := config.InitDB(cfg.Database)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		user, err := createSuperuser(db, suPhone, suPassword, suFirstName, suLastName)
		if err != nil {
			return err
		}
		log.Infof("superuser %s created (id %d)", user.PhoneNumber, user.ID)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&suPhone, "phone", "", "Phone number used to log in")
	createSuperuserCmd.Flags().StringVar(&suPassword, "password", "", "Password")
	createSuperuserCmd.Flags().StringVar(&suFirstName, "first-name", "", "First name")
	createSuperuserCmd.Flags().StringVar(&suLastName, "last-name", "", "Last name")
	rootCmd.AddCommand(createSuperuserCmd)
}

// createSuperuser stores an active staff user with the admin role.
func createSuperuser(db *gorm.DB, phone, password, firstName, lastName string) (*models.User, error) {
	if phone == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		PhoneNumber:  phone,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsStaff:      true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create superuser %s: %w", phone, err)
	}
	return &user, nil
}
