package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type credentialsForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type questionForm struct {
	Question string `validate:"required"`
}

type answerForm struct {
	Answer string `validate:"required"`
}

// parseCredentials trims the username only; passwords are compared verbatim.
func parseCredentials(r *http.Request) (credentialsForm, error) {
	if err := r.ParseForm(); err != nil {
		return credentialsForm{}, err
	}
	form := credentialsForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	return form, validate.Struct(form)
}

func parseQuestion(r *http.Request) (questionForm, error) {
	if err := r.ParseForm(); err != nil {
		return questionForm{}, err
	}
	form := questionForm{Question: strings.TrimSpace(r.PostFormValue("question"))}
	return form, validate.Struct(form)
}

func parseAnswer(r *http.Request) (answerForm, error) {
	if err := r.ParseForm(); err != nil {
		return answerForm{}, err
	}
	form := answerForm{Answer: strings.TrimSpace(r.PostFormValue("answer"))}
	return form, validate.Struct(form)
}
