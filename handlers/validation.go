package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{3,15}$`)
	registerOnce sync.Once
)

// enum is implemented by every choice type in models.
type enum interface {
	Valid() bool
}

func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enum)
			return ok && e.Valid()
		})
	})
}

func fieldMessage(fe validator.FieldError) string {
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if numeric {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if numeric {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "enum", "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "phone":
		return "Enter a valid phone number."
	}
	return "Invalid value."
}

// validationErrors turns binding failures into {"field": ["message"]}.
func validationErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := gin.H{}
		for _, fe := range verrs {
			msgs, _ := out[fe.Field()].([]string)
			out[fe.Field()] = append(msgs, fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return gin.H{typeErr.Field: []string{fmt.Sprintf("Expected %s.", typeErr.Type)}}
	}
	return gin.H{"error": err.Error()}
}

// bindJSON binds the body into req, answering 400 with field errors on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, validationErrors(err))
		return false
	}
	return true
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// uniqueTogether answers 400 for a violated composite unique constraint.
func uniqueTogether(c *gin.Context, fields ...string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"non_field_errors": []string{
			fmt.Sprintf("The fields %s must make a unique set.", strings.Join(fields, ", ")),
		},
	})
}
