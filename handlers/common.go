package handlers

import (
	"context"
	"errors"
	"net/http"

	"liist/common"
	"liist/models"

	"github.com/gorilla/schema"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Messages shown to users. Error texts never reveal which credential was wrong.
const (
	msgDuplicateEmail     = "Email already registered!"
	msgInvalidCredentials = "Invalid email or password!"
	msgLoginRequired      = "Please log in to access this page."
	msgItemNotFound       = "Item not found."
	msgGeneric            = "Something went wrong, try again!"
	msgAccountCreated     = "Account successfully created"
	msgBadForm            = "Invalid form submission."
)

// logRequest logs message with the request's structured context attached.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	allFields := append(requestFields(ctx), fields...)

	switch level {
	case "info":
		logger.Info(message, allFields...)
	case "error":
		logger.Error(message, allFields...)
	case "debug":
		logger.Debug(message, allFields...)
	}
}

// requestFields describes the route httpserver matched and the signed-in
// user. Either part is left out when ctx does not carry it.
func requestFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if name := httpserver.GetRouteName(ctx); name != "" {
		fields = append(fields,
			zap.String("route", name),
			zap.String("method", httpserver.GetRouteMethod(ctx)),
			zap.String("path", httpserver.GetRoutePath(ctx)),
		)
	}
	if user := currentUser(ctx); user != nil {
		fields = append(fields, zap.String("user_id", user.ID))
	}
	return fields
}

// toAppError maps a service error onto the status code and message shown
// to the user.
func toAppError(err error) *errs.AppError {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		return errs.NewValidationError(verr.Error())
	case errors.Is(err, common.ErrValidation):
		return errs.NewValidationError(msgBadForm)
	case errors.Is(err, common.ErrDuplicateEmail):
		return errs.NewValidationError(msgDuplicateEmail)
	case errors.Is(err, common.ErrInvalidCredentials):
		return errs.NewAuthenticationError(msgInvalidCredentials)
	case errors.Is(err, common.ErrUnauthenticated):
		return errs.NewAuthenticationError(msgLoginRequired)
	case errors.Is(err, common.ErrNotFound):
		return errs.NewNotFoundError(msgItemNotFound)
	}
	return errs.NewInternalServerError(msgGeneric)
}

// flashCategory picks the flash style for a failed form submission.
func flashCategory(appErr *errs.AppError) string {
	if appErr.Code == http.StatusUnprocessableEntity {
		return "warning"
	}
	return "danger"
}

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("form")
	d.IgnoreUnknownKeys(true)
	return d
}

// decodeForm fills dst from the request's form body using its form tags.
func decodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return common.NewValidationError("form", msgBadForm)
	}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return common.NewValidationError("form", msgBadForm)
	}
	return nil
}

type userContextKey struct{}

// withUser attaches the signed-in user to ctx.
func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// currentUser returns the user placed on ctx by RequireSession.
func currentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey{}).(*models.User)
	return user
}
