package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"orgstructure/internal/service"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createDepartmentRequest struct {
	Name     string `json:"name" validate:"required"`
	ParentID *uint  `json:"parent_id" validate:"omitnil,gt=0"`
}

type createEmployeeRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Position string  `json:"position" validate:"required"`
	HiredAt  *string `json:"hired_at" validate:"omitnil,datetime=2006-01-02"`
}

type updateDepartmentRequest struct {
	Name     *string      `json:"name" validate:"omitnil,min=1"`
	ParentID optionalUint `json:"parent_id"`
}

// optionalUint tells an explicit null apart from an absent field.
type optionalUint struct {
	Set   bool
	Value *uint `validate:"omitnil,gt=0"`
}

func (o *optionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	var value uint
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// decodeAndValidate reads exactly one JSON document into target and runs the
// struct validation tags over it.
func decodeAndValidate(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return errors.New("invalid JSON body")
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		return errors.New("invalid JSON body")
	}

	return validationMessage(validate.Struct(target))
}

func validationMessage(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := fieldErr.Field()
		if field == "Value" {
			field = "parent_id"
		}
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "datetime":
			messages = append(messages, fmt.Sprintf("%s must be in YYYY-MM-DD format", field))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be a positive integer", field))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

func parseUintID(raw string) (uint, error) {
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id64), nil
}

func parseGetDepartmentOptions(r *http.Request) (service.GetDepartmentOptions, error) {
	query := r.URL.Query()

	depth := service.DefaultDepth
	if rawDepth := strings.TrimSpace(query.Get("depth")); rawDepth != "" {
		parsedDepth, err := strconv.Atoi(rawDepth)
		if err != nil {
			return service.GetDepartmentOptions{}, errors.New("depth must be an integer")
		}
		if parsedDepth < service.MinDepth || parsedDepth > service.MaxDepth {
			return service.GetDepartmentOptions{}, fmt.Errorf("depth must be in range %d..%d", service.MinDepth, service.MaxDepth)
		}
		depth = parsedDepth
	}

	includeEmployees := true
	if rawIncludeEmployees := strings.TrimSpace(query.Get("include_employees")); rawIncludeEmployees != "" {
		parsedIncludeEmployees, err := strconv.ParseBool(rawIncludeEmployees)
		if err != nil {
			return service.GetDepartmentOptions{}, errors.New("include_employees must be a boolean")
		}
		includeEmployees = parsedIncludeEmployees
	}

	return service.GetDepartmentOptions{
		Depth:            depth,
		IncludeEmployees: includeEmployees,
	}, nil
}

func parseDeleteMode(raw string) service.DeleteMode {
	return service.DeleteMode(strings.TrimSpace(strings.ToLower(raw)))
}

func parseOptionalReassignDepartmentID(raw string) (*uint, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsedID, err := parseUintID(value)
	if err != nil {
		return nil, errors.New("reassign_to_department_id must be a positive integer")
	}
	return &parsedID, nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}

	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, errors.New("hired_at must be in YYYY-MM-DD format")
	}
	return &parsed, nil
}
