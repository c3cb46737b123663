package truco

import (
	"fmt"

	"truco-server/pkg/rules"
)

func (e *Engine) setPending(m *Match, callType CallType, call rules.Call, from, to int, chain []rules.Call, raises []rules.Call) {
	allowed := []string{string(Quiero), string(NoQuiero)}
	for _, r := range raises {
		allowed = append(allowed, string(r))
	}

	m.PendingCall = &PendingCall{
		Type:             callType,
		Subtype:          call,
		FromPlayerID:     m.Players[from].PlayerID,
		ToPlayerID:       m.Players[to].PlayerID,
		ChainState:       cloneCalls(chain),
		AllowedResponses: allowed,
	}
	m.Hand.CanPlayCard = false

	e.event(m, EventCall, m.Players[from].PlayerID, map[string]interface{}{
		"type":       string(callType),
		"call":       string(call),
		"toPlayerId": m.Players[to].PlayerID,
	})
}

// clearPending removes the pending call and lets card play resume
func clearPending(m *Match) {
	m.PendingCall = nil
	m.Hand.CanPlayCard = true
}

// pendingRespondent checks that an outstanding call of the given type is addressed to the player.
// It returns true if there is such a call, false if there is no call at all.
func pendingRespondent(m *Match, callType CallType, playerID string) (bool, error) {
	pc := m.PendingCall
	if pc == nil {
		return false, nil
	}

	if pc.Type != callType {
		return false, fmt.Errorf("%w: %s", ErrPendingCallExists, pc.Subtype)
	}

	if pc.ToPlayerID != playerID {
		return false, ErrNotYourTurn
	}

	return true, nil
}

// addressee returns the seat a call from seat is made to
// A counter-raise goes back to the player who made the call being raised; a fresh call goes to the next seat.
func (m *Match) addressee(seat int, raising bool) int {
	if raising {
		from, _ := m.Seat(m.PendingCall.FromPlayerID)
		return from
	}

	return m.nextSeat(seat)
}

func (e *Engine) callTruco(m *Match, a Action) error {
	if err := requirePlaying(m); err != nil {
		return err
	}

	seat, _ := m.Seat(a.PlayerID)
	team := m.Players[seat].Team

	raising, err := pendingRespondent(m, CallTruco, a.PlayerID)
	if err != nil {
		return err
	}

	level := m.Truco.Level
	if raising {
		// a counter-raise accepts the level on the table
		level = rules.TrucoLevel(m.PendingCall.Subtype)
	} else {
		if m.Hand.TurnPlayerID != a.PlayerID {
			return ErrNotYourTurn
		}

		if m.Truco.RaiseTeam != "" && m.Truco.RaiseTeam != team {
			return fmt.Errorf("%w: only the team that accepted may raise", ErrIllegalCall)
		}
	}

	call, ok := rules.NextTrucoCall(level)
	if !ok {
		return fmt.Errorf("%w: truco is already at %s", ErrIllegalCall, rules.Vale4)
	}

	if raising {
		m.Truco.Level = level
		m.Hand.Value = rules.TrucoHandValue(level)
	}

	to := m.addressee(seat, raising)
	m.Truco.Calls = append(m.Truco.Calls, call)

	var raises []rules.Call
	if next, ok := rules.NextTrucoCall(rules.TrucoLevel(call)); ok {
		raises = append(raises, next)
	}

	e.setPending(m, CallTruco, call, seat, to, m.Truco.Calls, raises)
	return nil
}

func (e *Engine) callEnvido(m *Match, a Action) error {
	if err := requirePlaying(m); err != nil {
		return err
	}

	if !a.Call.IsEnvido() {
		return fmt.Errorf("%w: %q is not an envido call", ErrIllegalCall, a.Call)
	}

	raising, err := pendingRespondent(m, CallEnvido, a.PlayerID)
	if err != nil {
		return err
	}

	if m.Envido.Resolved {
		return fmt.Errorf("%w: envido was already played", ErrIllegalCall)
	}

	if m.Hand.firstCardPlayed() {
		return fmt.Errorf("%w: envido must be called before the first card", ErrIllegalCall)
	}

	if m.Options.FlorEnabled && m.anyFlor() {
		return fmt.Errorf("%w: flor blocks envido", ErrIllegalCall)
	}

	if !raising && len(m.Envido.Calls) > 0 {
		return fmt.Errorf("%w: envido was already called", ErrIllegalCall)
	}

	if !rules.CanRaiseEnvido(m.Envido.Calls, a.Call) {
		return fmt.Errorf("%w: cannot call %s after %v", ErrIllegalCall, a.Call, m.Envido.Calls)
	}

	m.Envido.Calls = append(m.Envido.Calls, a.Call)

	var raises []rules.Call
	for _, c := range []rules.Call{rules.EnvidoEnvido, rules.RealEnvido, rules.FaltaEnvido} {
		if rules.CanRaiseEnvido(m.Envido.Calls, c) {
			raises = append(raises, c)
		}
	}

	seat, _ := m.Seat(a.PlayerID)
	e.setPending(m, CallEnvido, a.Call, seat, m.addressee(seat, raising), m.Envido.Calls, raises)
	return nil
}

func (m *Match) anyFlor() bool {
	for _, p := range m.Players {
		if p.HasFlor {
			return true
		}
	}

	return false
}

// opposingFlorHolder returns the first seat after seat, on the other team, holding flor
func (m *Match) opposingFlorHolder(seat int) int {
	team := m.Players[seat].Team
	for i := m.nextSeat(seat); i != seat; i = m.nextSeat(i) {
		if p := m.Players[i]; p.Team != team && p.HasFlor {
			return i
		}
	}

	return -1
}

func (e *Engine) callFlor(m *Match, a Action) error {
	if err := requirePlaying(m); err != nil {
		return err
	}

	if !m.Options.FlorEnabled {
		return fmt.Errorf("%w: flor is not played", ErrIllegalCall)
	}

	call := a.Call
	if call == "" {
		call = rules.Flor
	}

	if !call.IsFlor() {
		return fmt.Errorf("%w: %q is not a flor call", ErrIllegalCall, call)
	}

	raising, err := pendingRespondent(m, CallFlor, a.PlayerID)
	if err != nil {
		return err
	}

	seat, _ := m.Seat(a.PlayerID)
	p := m.Players[seat]
	if !p.HasFlor {
		return fmt.Errorf("%w: you do not have flor", ErrIllegalCall)
	}

	if m.Flor.Resolved {
		return fmt.Errorf("%w: flor was already played", ErrIllegalCall)
	}

	if m.Hand.firstCardPlayed() {
		return fmt.Errorf("%w: flor must be called before the first card", ErrIllegalCall)
	}

	if raising && !m.Options.ContraFlor {
		return fmt.Errorf("%w: contra flor is not played", ErrIllegalCall)
	}

	if !raising && len(m.Flor.Calls) > 0 {
		return fmt.Errorf("%w: flor was already called", ErrIllegalCall)
	}

	if !rules.CanRaiseFlor(m.Flor.Calls, call) {
		return fmt.Errorf("%w: cannot call %s after %v", ErrIllegalCall, call, m.Flor.Calls)
	}

	m.Flor.Calls = append(m.Flor.Calls, call)
	m.Flor.Declared[seat] = true
	m.Envido.Resolved = true

	opponent := m.opposingFlorHolder(seat)
	if raising {
		opponent = m.addressee(seat, true)
	}

	if opponent < 0 {
		m.Flor.Resolved = true
		m.Flor.Winner = p.Team
		m.Flor.Points = rules.FlorPoints

		e.event(m, EventFlorResolved, p.PlayerID, map[string]interface{}{
			"winnerTeam": string(p.Team),
			"points":     rules.FlorPoints,
		})

		e.award(m, p.Team, rules.FlorPoints)
		return nil
	}

	var raises []rules.Call
	if m.Options.ContraFlor {
		for _, c := range []rules.Call{rules.ContraFlor, rules.ContraFlorAlResto} {
			if rules.CanRaiseFlor(m.Flor.Calls, c) {
				raises = append(raises, c)
			}
		}
	}

	e.setPending(m, CallFlor, call, seat, opponent, m.Flor.Calls, raises)
	return nil
}

func (e *Engine) respond(m *Match, a Action) error {
	if err := requirePlaying(m); err != nil {
		return err
	}

	pc := m.PendingCall
	if pc == nil {
		return fmt.Errorf("%w: there is no call to answer", ErrIllegalCall)
	}

	if pc.ToPlayerID != a.PlayerID {
		return ErrNotYourTurn
	}

	if a.Response != Quiero && a.Response != NoQuiero {
		return fmt.Errorf("%w: got %q", ErrInvalidResponse, a.Response)
	}

	callerTeam := m.Player(pc.FromPlayerID).Team
	accepted := a.Response == Quiero

	e.event(m, EventResponse, a.PlayerID, map[string]interface{}{
		"type":     string(pc.Type),
		"call":     string(pc.Subtype),
		"response": string(a.Response),
	})

	switch pc.Type {
	case CallTruco:
		level := rules.TrucoLevel(pc.Subtype)
		if !accepted {
			m.Hand.Value = rules.TrucoRejectPoints(level)
			e.endHand(m, callerTeam, "noQuiero")
			return nil
		}

		clearPending(m)
		m.Truco.Level = level
		m.Truco.RaiseTeam = callerTeam.Opponent()
		m.Hand.Value = rules.TrucoHandValue(level)
	case CallEnvido:
		clearPending(m)
		e.resolveEnvido(m, accepted, callerTeam)
	case CallFlor:
		clearPending(m)
		if accepted {
			seat, _ := m.Seat(a.PlayerID)
			m.Flor.Declared[seat] = true
		}
		e.resolveFlor(m, accepted, callerTeam)
	}

	return nil
}

// bestValue returns the team with the highest value; ties go to the mano's team
func (m *Match) bestValue(value func(p *Player) (int, bool)) (Team, []int) {
	values := make([]int, len(m.Players))
	best := map[Team]int{TeamA: -1, TeamB: -1}
	for i, p := range m.Players {
		v, ok := value(p)
		if !ok {
			continue
		}

		values[i] = v
		if v > best[p.Team] {
			best[p.Team] = v
		}
	}

	switch {
	case best[TeamA] > best[TeamB]:
		return TeamA, values
	case best[TeamB] > best[TeamA]:
		return TeamB, values
	}

	return m.manoTeam(), values
}

func (e *Engine) resolveEnvido(m *Match, accepted bool, callerTeam Team) {
	m.Envido.Resolved = true
	m.Envido.Accepted = accepted

	data := map[string]interface{}{"accepted": accepted}
	winner := callerTeam
	points := rules.EnvidoRejectPoints(m.Envido.Calls)
	if accepted {
		var values []int
		winner, values = m.bestValue(func(p *Player) (int, bool) {
			return p.EnvidoValue, true
		})

		points = rules.EnvidoAcceptPoints(m.Envido.Calls, m.faltaPoints())
		data["values"] = values
	}

	m.Envido.Winner = winner
	m.Envido.Points = points
	data["winnerTeam"] = string(winner)
	data["points"] = points
	e.event(m, EventEnvidoResolved, "", data)

	e.award(m, winner, points)
}

func (e *Engine) resolveFlor(m *Match, accepted bool, callerTeam Team) {
	m.Flor.Resolved = true
	m.Flor.Accepted = accepted

	data := map[string]interface{}{"accepted": accepted}
	winner := callerTeam
	points := rules.FlorRejectPoints(m.Flor.Calls)
	if accepted {
		var values []int
		winner, values = m.bestValue(func(p *Player) (int, bool) {
			return p.FlorValue, p.HasFlor
		})

		points = rules.FlorAcceptPoints(m.Flor.Calls, m.faltaPoints())
		data["values"] = values
	}

	m.Flor.Winner = winner
	m.Flor.Points = points
	data["winnerTeam"] = string(winner)
	data["points"] = points
	e.event(m, EventFlorResolved, "", data)

	e.award(m, winner, points)
}

func (m *Match) faltaPoints() int {
	return rules.FaltaPoints(m.Score.Target, m.Score.TeamA, m.Score.TeamB)
}

func (e *Engine) fold(m *Match, a Action) error {
	if err := requirePlaying(m); err != nil {
		return err
	}

	p := m.Player(a.PlayerID)
	e.event(m, EventFold, p.PlayerID, nil)

	if pc := m.PendingCall; pc != nil {
		callerTeam := m.Player(pc.FromPlayerID).Team
		m.PendingCall = nil

		switch pc.Type {
		case CallTruco:
			if callerTeam != p.Team && e.award(m, callerTeam, rules.TrucoRejectPoints(rules.TrucoLevel(pc.Subtype))) {
				return nil
			}
		case CallEnvido:
			m.Envido.Resolved = true
			if callerTeam != p.Team {
				e.resolveEnvido(m, false, callerTeam)
			}
		case CallFlor:
			m.Flor.Resolved = true
			if callerTeam != p.Team {
				e.resolveFlor(m, false, callerTeam)
			}
		}

		if m.IsFinished {
			return nil
		}
	}

	e.endHand(m, p.Team.Opponent(), "fold")
	return nil
}
