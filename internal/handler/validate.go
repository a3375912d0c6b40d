package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dukerupert/touchline/internal/chore"
	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/model"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag   = "notblank"
	eventTypeTag  = "eventtype"
	dateTag       = "date"
	choreStateTag = "chorestatus"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(eventTypeTag, validEventType)
	_ = validate.RegisterValidation(dateTag, validDate)
	_ = validate.RegisterValidation(choreStateTag, validChoreStatus)

	registerCustomTranslations(notBlankTag, eventTypeTag, dateTag, choreStateTag)
}

// registerCustomTranslations attaches messages for the custom tags. The
// default translations are already registered, so the register func is a noop.
func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case eventTypeTag:
		return fe.Field() + " is not a known event type"
	case dateTag:
		return fe.Field() + " must be a YYYY-MM-DD date"
	case choreStateTag:
		return fe.Field() + " must be pending, completed or cancelled"
	}
	return ""
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func validEventType(fl validator.FieldLevel) bool {
	return model.EventType(fl.Field().String()).Valid()
}

func validDate(fl validator.FieldLevel) bool {
	return localtime.ValidDate(fl.Field().String())
}

func validChoreStatus(fl validator.FieldLevel) bool {
	return chore.ValidStatus(model.ChoreStatus(fl.Field().String()))
}

// fieldErrors maps each failed field to its translated message.
func fieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}
