package oidc

import "net/url"

// CallbackError carries the page the browser is sent to when a login fails.
type CallbackError struct {
	RedirectURL string
	Message     string
}

func (e *CallbackError) Error() string {
	return e.Message
}

func newCallbackError(code, description, message string) *CallbackError {
	return &CallbackError{
		RedirectURL: errorRedirect(code, description),
		Message:     message,
	}
}

// errorRedirect points back at the site root so the client can show the failure.
func errorRedirect(code, description string) string {
	query := url.Values{}
	query.Set("auth_error", code)
	if description != "" {
		query.Set("auth_error_description", description)
	}
	return "/?" + query.Encode()
}
