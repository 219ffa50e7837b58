package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

const notBlankTag = "notblank"

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		// Report JSON names, not Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
			if s, ok := fl.Field().Interface().(string); ok {
				return strings.TrimSpace(s) != ""
			}
			return false
		})
		_ = validate.RegisterTranslation(notBlankTag, translator,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				return fe.Field() + " cannot be blank"
			},
		)
	})
	return validate, translator
}

// Struct validates v's `validate` tags and returns a validation_failed
// aggregate error listing every rejected field, or nil.
func Struct(op string, v any) error {
	vd, tr := instance()
	err := vd.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domainagg.NewValidationError(op, err.Error(), nil)
	}
	fields := make([]domainagg.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domainagg.FieldError{Field: fe.Field(), Message: fe.Translate(tr)})
	}
	return domainagg.NewValidationError(op, "invalid input", fields)
}
