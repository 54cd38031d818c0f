package app

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AddEventRequest is the payload of POST /api/events/add.
type AddEventRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// DeleteEventRequest is the payload of POST /api/events/delete.
type DeleteEventRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	ID   string `json:"id" validate:"required,uuid4"`
}

// ValidateAddEvent checks field presence/format and the selectable date range.
// The returned message is safe to show to the user.
func ValidateAddEvent(req AddEventRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Title" {
					return errors.New(ErrTitleRequired)
				}
			}
			return errors.New(ErrInvalidDateFormat)
		}
		return err
	}
	if req.Date < MinDate || req.Date > MaxDate {
		return errors.New(ErrDateOutOfRange)
	}
	return nil
}

// ValidateDeleteEvent checks field presence and formats.
func ValidateDeleteEvent(req DeleteEventRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.New(ErrInvalidRequest)
	}
	return nil
}
