package bulk

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
)

const maxReasonLength = 500

var fieldLimits = map[string]int{
	"first_name":   100,
	"last_name":    100,
	"email":        320,
	"phone_number": 32,
}

// mutableFields are the keys an update row may carry. Anything else is dropped.
var mutableFields = map[string]string{
	"first_name":   "required,max=100",
	"last_name":    "required,max=100",
	"email":        "required,email,max=320",
	"phone_number": "max=32",
	"role":         "required,oneof=customer staff admin",
}

var mutableFieldOrder = []string{"first_name", "last_name", "email", "phone_number", "role"}

type importRow struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=320"`
	PhoneNumber string `json:"phone_number" validate:"max=32"`
	Role        string `json:"role" validate:"omitempty,oneof=customer staff admin"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive suspended pending"`
}

// Validator checks a single command in isolation. It never touches the store.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns a normalized copy of cmd, or an error whose message is the
// row-level failure reported to the caller.
func (v *Validator) Validate(cmd domainbulk.Command) (domainbulk.Command, error) {
	switch c := cmd.(type) {
	case domainbulk.UpdateCommand:
		return v.validateUpdate(c)
	case domainbulk.StatusChangeCommand:
		return v.validateStatusChange(c)
	case domainbulk.SoftDeleteCommand:
		return v.validateSoftDelete(c)
	case domainbulk.ImportRowCommand:
		return v.validateImportRow(c)
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (v *Validator) validateUpdate(c domainbulk.UpdateCommand) (domainbulk.Command, error) {
	userID := strings.TrimSpace(c.UserID)
	if userID == "" {
		return nil, errors.New("userId is required")
	}
	if len(c.Fields) == 0 {
		return nil, errors.New("No fields to update")
	}

	fields := make(map[string]any, len(c.Fields))
	for _, name := range mutableFieldOrder {
		raw, ok := c.Fields[name]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", name)
		}
		value = strings.TrimSpace(value)
		switch name {
		case "email":
			value = domain.NormalizeEmail(value)
		case "role":
			value = strings.ToLower(value)
		}
		if err := v.validate.Var(value, mutableFields[name]); err != nil {
			return nil, fieldMessage(name, value, err)
		}
		fields[name] = value
	}
	if len(fields) == 0 {
		return nil, errors.New("No valid fields to update")
	}

	return domainbulk.UpdateCommand{UserID: userID, Fields: fields}, nil
}

func (v *Validator) validateStatusChange(c domainbulk.StatusChangeCommand) (domainbulk.Command, error) {
	userID, err := v.userID(c.UserID)
	if err != nil {
		return nil, err
	}
	status := domain.Status(strings.ToLower(strings.TrimSpace(c.NewStatus)))
	if !status.Valid() {
		return nil, fmt.Errorf("Invalid status: %s", c.NewStatus)
	}
	reason, err := v.reason(c.Reason)
	if err != nil {
		return nil, err
	}
	return domainbulk.StatusChangeCommand{UserID: userID, NewStatus: string(status), Reason: reason}, nil
}

func (v *Validator) validateSoftDelete(c domainbulk.SoftDeleteCommand) (domainbulk.Command, error) {
	userID, err := v.userID(c.UserID)
	if err != nil {
		return nil, err
	}
	reason, err := v.reason(c.Reason)
	if err != nil {
		return nil, err
	}
	return domainbulk.SoftDeleteCommand{UserID: userID, Reason: reason}, nil
}

func (v *Validator) validateImportRow(c domainbulk.ImportRowCommand) (domainbulk.Command, error) {
	row := importRow{
		FirstName:   strings.TrimSpace(c.RawFields["first_name"]),
		LastName:    strings.TrimSpace(c.RawFields["last_name"]),
		Email:       domain.NormalizeEmail(c.RawFields["email"]),
		PhoneNumber: strings.TrimSpace(c.RawFields["phone_number"]),
		Role:        strings.ToLower(strings.TrimSpace(c.RawFields["role"])),
		Status:      strings.ToLower(strings.TrimSpace(c.RawFields["status"])),
	}

	if err := v.validate.Struct(row); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}

		missing := make([]string, 0, 3)
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("Missing required fields: %s", strings.Join(missing, ", "))
		}
		fe := fieldErrs[0]
		return nil, fieldMessage(fe.Field(), fmt.Sprint(fe.Value()), fe)
	}

	return domainbulk.ImportRowCommand{RawFields: map[string]string{
		"first_name":   row.FirstName,
		"last_name":    row.LastName,
		"email":        row.Email,
		"phone_number": row.PhoneNumber,
		"role":         row.Role,
		"status":       row.Status,
	}}, nil
}

func (v *Validator) userID(raw string) (string, error) {
	userID := strings.TrimSpace(raw)
	if userID == "" {
		return "", errors.New("userId is required")
	}
	if err := v.validate.Var(userID, "uuid"); err != nil {
		return "", errors.New("Invalid user id")
	}
	return strings.ToLower(userID), nil
}

func (v *Validator) reason(raw string) (string, error) {
	reason := strings.TrimSpace(raw)
	if len(reason) > maxReasonLength {
		return "", fmt.Errorf("reason exceeds %d characters", maxReasonLength)
	}
	return reason, nil
}

// fieldMessage turns a validator failure for one field into a row message.
func fieldMessage(field, value string, err error) error {
	var tag string
	var fieldErrs validator.ValidationErrors
	var fieldErr validator.FieldError
	switch {
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		tag = fieldErrs[0].Tag()
	case errors.As(err, &fieldErr):
		tag = fieldErr.Tag()
	}

	switch {
	case tag == "required":
		return fmt.Errorf("%s cannot be empty", field)
	case field == "email" && tag == "email":
		return errors.New("Invalid email format")
	case field == "role":
		return fmt.Errorf("Invalid role: %s", value)
	case field == "status":
		return fmt.Errorf("Invalid status: %s", value)
	case tag == "max":
		return fmt.Errorf("%s exceeds %d characters", field, fieldLimits[field])
	default:
		return fmt.Errorf("invalid %s", field)
	}
}
