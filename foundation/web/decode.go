package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	en "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// validate and translator are shared across every Decode call; building
// them is expensive enough that the teacher's services always do it once
// at package init rather than per request.
var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	translatorFactory := ut.New(en.New(), en.New())
	translator, _ = translatorFactory.GetTranslator("en")

	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
}

// FieldError is one struct-tag validation failure, translated into a
// human-readable message.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// FieldErrors is the set of validation failures for one decoded value. It
// implements error so Decode can return it directly.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	return fmt.Sprintf("%d field(s) failed validation", len(fe))
}

// Fields flattens FieldErrors into the field->message map the API's error
// response carries.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, f := range fe {
		m[f.Field] = f.Error
	}
	return m
}

// Decode reads r's JSON body into val and runs struct-tag validation on
// it. A malformed body returns a plain error; a well-formed but invalid
// body returns FieldErrors.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := validate.Struct(val); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		fields := make(FieldErrors, len(verrors))
		for i, verror := range verrors {
			fields[i] = FieldError{
				Field: verror.Field(),
				Error: verror.Translate(translator),
			}
		}
		return fields
	}

	return nil
}
