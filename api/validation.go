package api

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxNameLength        = 100
	maxMessageLength     = 5000
	maxImageURLLength    = 2048
)

// validateNewProject mirrors the admin form: title and description required,
// links must be URLs when given. The image may be any path or URL, relative
// ones included.
func validateNewProject(in *models.NewProjectInput) error {
	return asFieldError(validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&in.Description, validation.Required, validation.Length(1, maxDescriptionLength)),
		validation.Field(&in.ImageURL, validation.Length(0, maxImageURLLength)),
		validation.Field(&in.GithubLink, is.URL),
		validation.Field(&in.HostedLink, is.URL),
	))
}

func validateProjectPatch(p *models.ProjectPatch) error {
	if p.IsEmpty() {
		return errs.NewBadRequestError("patch has no fields")
	}
	return asFieldError(validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
		validation.Field(&p.Description, validation.NilOrNotEmpty, validation.Length(1, maxDescriptionLength)),
		validation.Field(&p.ImageURL, validation.Length(0, maxImageURLLength)),
		validation.Field(&p.GithubLink, is.URL),
		validation.Field(&p.HostedLink, is.URL),
	))
}

func validateContactMessage(m *models.ContactMessage) error {
	return asFieldError(validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Message, validation.Required, validation.Length(1, maxMessageLength)),
	))
}

// asFieldError reports the first failing field, in name order, as an ApiErr.
func asFieldError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewBadRequestError(err.Error())
	}
	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return errs.NewInvalidFieldError(fields[0], fieldErrs[fields[0]].Error())
}
