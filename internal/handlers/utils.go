package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/narration"
	"techrobotics-site/internal/navigation"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

const maxBodyBytes = 64 << 10

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Captured text is stored and later shown to admins, so no markup survives.
	sanitizer = bluemonday.StrictPolicy()

	errEmptyBody = errors.New("request body is empty")
)

// FormError lists the fields a submitted form got wrong.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// Message is the text shown to the user.
func (e *FormError) Message() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Please check the following fields: %s.", strings.Join(names, ", "))
}

func newFormError(errs validator.ValidationErrors) *FormError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return &FormError{Fields: fields}
}

// decodeRequest reads a JSON body into dst and validates it.
func decodeRequest(ctx *middlewares.AppContext, dst any) error {
	if ctx.Request.Body == nil || ctx.Request.Body == http.NoBody {
		return errEmptyBody
	}

	decoder := json.NewDecoder(http.MaxBytesReader(ctx.Response, ctx.Request.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newFormError(verrs)
		}
		return err
	}
	return nil
}

func clean(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}

// loadSession returns the request's navigation session with any finished
// simulated narration wrapped up.
func loadSession(ctx *middlewares.AppContext) *navigation.Session {
	s := ctx.Session()
	if d := ctx.Narrator.Duration(); d > 0 && s.FinishNarration(d) {
		s.ShowMessage(navigation.Success(narration.CompletedMessage))
	}
	return s
}

// respond saves the session and writes the transition result with the new view.
func respond(ctx *middlewares.AppContext, status int, outcome string, msg *navigation.Message) {
	s := ctx.Session()
	ctx.SaveSession()
	ctx.WriteJSON(status, StateResponse{
		Outcome: outcome,
		Page:    s.Page(),
		Message: msg,
		View:    buildView(ctx, s),
	})
}

// reject shows text as an error message and answers with status.
func reject(ctx *middlewares.AppContext, status int, text string) {
	msg := navigation.Error(text)
	ctx.Session().ShowMessage(msg)
	respond(ctx, status, outcomeRejected, msg)
}

// rejectRequest maps a decodeRequest failure to a user-facing rejection.
func rejectRequest(ctx *middlewares.AppContext, err error, fallback string) {
	var formErr *FormError
	if errors.As(err, &formErr) {
		ctx.Logger.Debug("request validation failed", "fields", formErr.Fields)
		reject(ctx, http.StatusBadRequest, fallback+" "+formErr.Message())
		return
	}
	ctx.Logger.Warn("invalid request body", "error", err)
	reject(ctx, http.StatusBadRequest, fallback+" The request could not be read.")
}

const (
	outcomeShown    = "shown"
	outcomeRejected = "rejected"
	outcomeAccepted = "accepted"
)
