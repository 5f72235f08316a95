package controllers

import (
	"errors"
	"net/http"

	"mealdesk/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// MessageResponse is the generic {"msg": ...} body used for errors and
// confirmations.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// writeServiceError translates service-layer errors to HTTP responses.
// Validation failures carry their field list; unexpected errors are
// logged and answered with a generic body so internals don't leak.
func writeServiceError(resp *restful.Response, logger *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = resp.WriteHeaderAndJson(http.StatusBadRequest, verr, restful.MIME_JSON)
	case errors.Is(err, services.ErrInvalidCredentials):
		_ = resp.WriteHeaderAndJson(http.StatusBadRequest, MessageResponse{Msg: "Invalid credentials"}, restful.MIME_JSON)
	case errors.Is(err, services.ErrConflict):
		_ = resp.WriteHeaderAndJson(http.StatusConflict, MessageResponse{Msg: "User already exists"}, restful.MIME_JSON)
	case errors.Is(err, services.ErrNotFound):
		_ = resp.WriteHeaderAndJson(http.StatusNotFound, MessageResponse{Msg: "Resource not found"}, restful.MIME_JSON)
	case errors.Is(err, services.ErrUnauthorized):
		_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, MessageResponse{Msg: "User not authorized"}, restful.MIME_JSON)
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		_ = resp.WriteHeaderAndJson(http.StatusInternalServerError, MessageResponse{Msg: "Server error"}, restful.MIME_JSON)
	}
}
