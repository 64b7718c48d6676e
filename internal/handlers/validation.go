package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskhub/internal/models"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// check validates req and returns the first problem as a client message.
func (h *Handlers) check(req any) (string, bool) {
	err := h.validate.Struct(req)
	if err == nil {
		return "", true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error(), false
	}
	return fieldMessage(verrs[0]), false
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%q is not allowed to be empty", field)
	case "isodate":
		return fmt.Sprintf("%q must be a valid date", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// bind decodes and validates the JSON body into req, writing a 400 on failure.
func (h *Handlers) bind(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := decodeJSON(r, req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return false
	}
	if msg, ok := h.check(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// pathID parses the named URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, param string) (models.ID, bool) {
	id, err := parseID(r, param)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("%q must be a positive integer", param))
		return 0, false
	}
	return id, true
}
