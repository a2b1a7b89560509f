package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Machine-readable error codes. Deliberately uninformative about root cause:
// a duplicate email and a duplicate username both surface as UserAlreadyExists,
// a wrong password and an unknown account both as InvalidCredentials.
const (
	CodeUserAlreadyExists   = "UserAlreadyExists"
	CodeInvalidCredentials  = "InvalidCredentials"
	CodeInvalidRefreshToken = "InvalidRefreshToken"
	CodeInvalidAccessToken  = "InvalidAccessToken"
	CodeEmailNotVerified    = "EmailNotVerified"
)

type Response struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

const StatusError = "Error"

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

func AuthError(code string) Response {
	return Response{
		Status: StatusError,
		Code:   code,
		Error:  "unauthorized",
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not a valid email", err.Field()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	return Error(strings.Join(errMsgs, ", "))
}
