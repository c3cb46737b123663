package mux

import (
	"errors"
	"net/http"

	"truco-server/internal/config"
	"truco-server/internal/util"
	"truco-server/pkg/protocol"
	"truco-server/pkg/truco"
)

type postMatchPayload struct {
	Roster  []truco.RosterEntry `json:"roster"`
	Options *truco.Options      `json:"options"`
}

type postMatchResponse struct {
	ID    string      `json:"id"`
	State truco.State `json:"state"`
}

func (m *Mux) postMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postMatchPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		if len(payload.Roster) == 0 {
			writeJSONError(w, http.StatusBadRequest, errors.New("roster is required"))
			return
		}

		for i := range payload.Roster {
			if payload.Roster[i].Name == "" {
				payload.Roster[i].Name = util.GetRandomName()
			}
		}

		opts := config.Instance().MatchOptions()
		if payload.Options != nil {
			opts = *payload.Options
		}

		view, err := m.pitBoss.CreateMatch(r.Context(), roomID(r), payload.Roster, opts)
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, postMatchResponse{
			ID:    view.Match.ID,
			State: view.Match.State,
		})
	}
}

func (m *Mux) getMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := m.pitBoss.View(r.Context(), roomID(r), playerID(r))
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func (m *Mux) postMatchAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload protocol.PayloadIn
		if !decodeRequest(w, r, &payload) {
			return
		}

		action, err := payload.ToAction(playerID(r))
		if err != nil {
			writeMatchError(w, err)
			return
		}

		view, err := m.pitBoss.ApplyPlayerAction(r.Context(), roomID(r), action)
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}
