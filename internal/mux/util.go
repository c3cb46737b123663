package mux

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"truco-server/pkg/room"
	"truco-server/pkg/truco"
)

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code,omitempty"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	writeJSONErrorWithCode(w, statusCode, err, "")
}

func writeJSONErrorWithCode(w http.ResponseWriter, statusCode int, err error, code string) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
		Code:       code,
	})
}

// writeMatchError maps room and rule errors to a status code
// Rule violations carry the same stable code websocket clients receive.
func writeMatchError(w http.ResponseWriter, err error) {
	var rosterErr truco.RosterError

	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		writeJSONError(w, http.StatusNotFound, err)
	case errors.Is(err, room.ErrRoomExists):
		writeJSONError(w, http.StatusConflict, err)
	case errors.Is(err, room.ErrRoomClosed):
		writeJSONError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, truco.ErrPlayerNotSeated):
		writeJSONErrorWithCode(w, http.StatusForbidden, err, truco.ErrorCode(err))
	case errors.As(err, &rosterErr):
		writeJSONErrorWithCode(w, http.StatusBadRequest, err, truco.ErrorCode(err))
	case errors.Is(err, truco.ErrMatchAlreadyFinished):
		writeJSONErrorWithCode(w, http.StatusConflict, err, truco.ErrorCode(err))
	default:
		if code := truco.ErrorCode(err); code != "internal" {
			writeJSONErrorWithCode(w, http.StatusUnprocessableEntity, err, code)
			return
		}

		writeJSONError(w, http.StatusInternalServerError, err)
	}
}
