package schema

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	v10 "github.com/go-playground/validator/v10"
)

// User-facing validation messages.
const (
	MsgNameRequired            = "Nome é obrigatório"
	MsgEmailRequired           = "Email é obrigatório"
	MsgEmailInvalid            = "Email inválido"
	MsgPasswordRequired        = "Senha é obrigatória"
	MsgConfirmPasswordRequired = "Confirmação de senha é obrigatória"
	MsgPasswordMin             = "A senha deve conter no mínimo 6 caracteres"
	MsgPasswordUpper           = "A senha deve conter pelo menos uma letra maiúscula"
	MsgPasswordLower           = "A senha deve conter pelo menos uma letra minúscula"
	MsgPasswordDigit           = "A senha deve conter pelo menos um número"
	MsgPasswordSymbol          = "A senha deve conter pelo menos um caractere especial"
	MsgPasswordMismatch        = "As senhas não coincidem"
	MsgInvalidData             = "Dados inválidos"
)

// passwordSymbols is the set of special characters the password policy accepts.
const passwordSymbols = "@$!%*?&"

// A ForgotPassword requests a password reset email.
type ForgotPassword struct {
	Email string `json:"email" schema:"email" validate:"required,email"`
}

// A SignIn carries credentials for verification by the provider.
// The password only needs to be present; its strength was policed at sign-up.
type SignIn struct {
	Email    string `json:"email" schema:"email" validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required"`
}

// A SignUp creates a new account.
type SignUp struct {
	Name            string `json:"name" schema:"name" validate:"required"`
	Email           string `json:"email" schema:"email" validate:"required,email"`
	Password        string `json:"password" schema:"password" validate:"required,min=6,upperchar,lowerchar,digitchar,symbolchar"`
	ConfirmPassword string `json:"confirmPassword" schema:"confirmPassword" validate:"required,eqfield=Password"`
}

// Normalize lowercases the email before validation,
// so the provider only ever sees one casing per address.
func (s *SignUp) Normalize() { s.Email = strings.ToLower(s.Email) }

// An UpdatePassword sets a new password for an authenticated session.
// The password policy matches sign-up.
type UpdatePassword struct {
	Password        string `json:"password" schema:"password" validate:"required,min=6,upperchar,lowerchar,digitchar,symbolchar"`
	ConfirmPassword string `json:"confirmPassword" schema:"confirmPassword" validate:"required,eqfield=Password"`
}

// A FieldError is the first validation issue found in a request,
// attributed to the form field it belongs to.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

func (fe *FieldError) Error() string { return fe.Field + ": " + fe.Msg }

// A Normalizer mutates a request into canonical shape before validation.
type Normalizer interface {
	Normalize()
}

var valid = newValidator()

// Check normalizes and validates the request struct pointed to by structPtr.
//
// On failure, Check returns only the FIRST issue in declared field order;
// the single field it names is where the form shows the inline error.
func Check(structPtr any) *FieldError {
	if n, ok := structPtr.(Normalizer); ok {
		n.Normalize()
	}

	err := valid.Struct(structPtr)
	if err == nil {
		return nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &FieldError{Msg: MsgInvalidData}
	}

	first := errs[0]
	return &FieldError{Field: first.Field(), Msg: message(first.Field(), first.Tag())}
}

// newValidator constructs the package validator, registering the
// password character-class rules and json-tag field naming.
func newValidator() *v10.Validate {
	v := v10.New()
	v.RegisterValidation("upperchar", charClass(unicode.IsUpper))
	v.RegisterValidation("lowerchar", charClass(unicode.IsLower))
	v.RegisterValidation("digitchar", charClass(unicode.IsDigit))
	v.RegisterValidation("symbolchar", func(fl v10.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), passwordSymbols)
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// charClass builds a rule requiring at least one rune matching the class.
func charClass(is func(rune) bool) v10.Func {
	return func(fl v10.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if is(r) {
				return true
			}
		}

		return false
	}
}

var requiredMsgs = map[string]string{
	"name":            MsgNameRequired,
	"email":           MsgEmailRequired,
	"password":        MsgPasswordRequired,
	"confirmPassword": MsgConfirmPasswordRequired,
}

// message translates a failed rule into the user-facing text for its field.
func message(field, tag string) string {
	switch tag {
	case "required":
		if msg, ok := requiredMsgs[field]; ok {
			return msg
		}
		return MsgInvalidData
	case "email":
		return MsgEmailInvalid
	case "min":
		return MsgPasswordMin
	case "upperchar":
		return MsgPasswordUpper
	case "lowerchar":
		return MsgPasswordLower
	case "digitchar":
		return MsgPasswordDigit
	case "symbolchar":
		return MsgPasswordSymbol
	case "eqfield":
		return MsgPasswordMismatch
	default:
		return MsgInvalidData
	}
}
