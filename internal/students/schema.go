package students

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/pkg/errors"
)

// fieldMessages overrides the default pt_BR texts, keyed by tag and field.
var fieldMessages = map[string]string{
	"required.nome":      "Nome é obrigatório",
	"required.matricula": "Matrícula é obrigatória",
	"gte.mensalidade":    "Mensalidade deve ser maior que 0",
}

// Schema validates the add/edit form input.
type Schema struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewSchema builds a validator that reports messages in Portuguese. It
// panics if the translations cannot be registered.
func NewSchema() *Schema {
	schema, err := newSchema(fieldMessages)
	if err != nil {
		panic(err)
	}
	return schema
}

func newSchema(messages map[string]string) (*Schema, error) {
	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	translator, found := uni.GetTranslator(locale.Locale())
	if !found {
		return nil, errors.Errorf("translator for %s not found", locale.Locale())
	}

	validate := validator.New()
	if err := ptBRTranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, errors.Wrap(err, "register pt_BR translations")
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, tag := range []string{"required", "gte"} {
		if err := registerFieldTranslation(validate, translator, tag, messages); err != nil {
			return nil, errors.Wrapf(err, "register %s translation", tag)
		}
	}
	return &Schema{validate: validate, translator: translator}, nil
}

func registerFieldTranslation(validate *validator.Validate, translator ut.Translator, tag string, messages map[string]string) error {
	return validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error {
			for key, text := range messages {
				if strings.HasPrefix(key, tag+".") {
					if err := t.Add(key, text, true); err != nil {
						return err
					}
				}
			}
			return nil
		},
		func(t ut.Translator, fe validator.FieldError) string {
			if s, err := t.T(fe.Tag() + "." + fe.Field()); err == nil {
				return s
			}
			return fe.Error()
		},
	)
}

// Validate trims the text fields and checks in against the schema.
// It returns the cleaned input or a *ValidationError.
func (s *Schema) Validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.RegistrationCode = strings.TrimSpace(in.RegistrationCode)

	err := s.validate.Struct(in)
	if err == nil {
		return in, nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return in, err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), fe.Translate(s.translator))
	}
	return in, verr
}
