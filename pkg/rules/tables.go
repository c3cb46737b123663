package rules

// Call is a step in one of the call chains
type Call string

// truco chain
const (
	Truco   Call = "TRUCO"
	Retruco Call = "RETRUCO"
	Vale4   Call = "VALE_4"
)

// envido chain
const (
	Envido       Call = "ENVIDO"
	EnvidoEnvido Call = "ENVIDO_ENVIDO"
	RealEnvido   Call = "REAL_ENVIDO"
	FaltaEnvido  Call = "FALTA_ENVIDO"
)

// flor chain
const (
	Flor              Call = "FLOR"
	ContraFlor        Call = "CONTRA_FLOR"
	ContraFlorAlResto Call = "CONTRA_FLOR_AL_RESTO"
)

// FlorPoints is awarded for a flor that no opponent can answer
const FlorPoints = 3

var trucoChain = []Call{Truco, Retruco, Vale4}
var envidoChain = []Call{Envido, EnvidoEnvido, RealEnvido, FaltaEnvido}
var florChain = []Call{Flor, ContraFlor, ContraFlorAlResto}

// IsTruco returns true if the call belongs to the truco chain
func (c Call) IsTruco() bool {
	return indexOf(trucoChain, c) >= 0
}

// IsEnvido returns true if the call belongs to the envido chain
func (c Call) IsEnvido() bool {
	return indexOf(envidoChain, c) >= 0
}

// IsFlor returns true if the call belongs to the flor chain
func (c Call) IsFlor() bool {
	return indexOf(florChain, c) >= 0
}

func indexOf(chain []Call, c Call) int {
	for i, call := range chain {
		if call == c {
			return i
		}
	}

	return -1
}

// TrucoLevel returns 1, 2 or 3 for TRUCO, RETRUCO and VALE_4, and 0 for anything else
func TrucoLevel(c Call) int {
	return indexOf(trucoChain, c) + 1
}

// NextTrucoCall returns the call that raises the truco chain from the given level
// The second return value is false when the chain is maxed.
func NextTrucoCall(level int) (Call, bool) {
	if level < 0 || level >= len(trucoChain) {
		return "", false
	}

	return trucoChain[level], true
}

// TrucoHandValue is what a hand is worth once the truco level has been accepted
func TrucoHandValue(acceptedLevel int) int {
	return acceptedLevel + 1
}

// TrucoRejectPoints is what the caller's team wins when the call at level is rejected.
// It is the hand value of the previous level: 1, 2 and 3 for truco, retruco and vale 4.
func TrucoRejectPoints(level int) int {
	if level < 1 {
		return 0
	}

	return TrucoHandValue(level - 1)
}

// CanRaiseEnvido returns true if next may be appended to the envido chain.
// Each call may appear at most once, in chain order, and ENVIDO_ENVIDO may only follow ENVIDO.
func CanRaiseEnvido(chain []Call, next Call) bool {
	n := indexOf(envidoChain, next)
	if n < 0 {
		return false
	}

	if len(chain) == 0 {
		return next != EnvidoEnvido
	}

	last := chain[len(chain)-1]
	if next == EnvidoEnvido {
		return last == Envido
	}

	return n > indexOf(envidoChain, last)
}

func envidoCallValue(c Call) int {
	switch c {
	case Envido, EnvidoEnvido:
		return 2
	case RealEnvido:
		return 3
	}

	return 0
}

// FaltaPoints is the value of a falta call: the points the trailing team still needs
func FaltaPoints(target, scoreA, scoreB int) int {
	trailing := scoreA
	if scoreB < trailing {
		trailing = scoreB
	}

	if p := target - trailing; p > 0 {
		return p
	}

	return 1
}

// EnvidoAcceptPoints is what the winner of an accepted envido chain receives.
// A chain that contains FALTA_ENVIDO is worth the falta value alone.
func EnvidoAcceptPoints(chain []Call, falta int) int {
	points := 0
	for _, c := range chain {
		if c == FaltaEnvido {
			return falta
		}

		points += envidoCallValue(c)
	}

	return points
}

// EnvidoRejectPoints is what the caller's team receives when the last step of the chain is
// rejected: the sum of the calls committed before it, and never less than one.
func EnvidoRejectPoints(chain []Call) int {
	if len(chain) == 0 {
		return 0
	}

	points := 0
	for _, c := range chain[:len(chain)-1] {
		points += envidoCallValue(c)
	}

	if points < 1 {
		return 1
	}

	return points
}

// CanRaiseFlor returns true if next may be appended to the flor chain
func CanRaiseFlor(chain []Call, next Call) bool {
	n := indexOf(florChain, next)
	if n < 0 {
		return false
	}

	if len(chain) == 0 {
		return next == Flor
	}

	return n == indexOf(florChain, chain[len(chain)-1])+1
}

// FlorAcceptPoints is what the winner of an accepted flor duel receives
func FlorAcceptPoints(chain []Call, falta int) int {
	if len(chain) == 0 {
		return 0
	}

	switch chain[len(chain)-1] {
	case ContraFlorAlResto:
		return falta
	case ContraFlor:
		return 9
	}

	return 2 * FlorPoints
}

// FlorRejectPoints is what the caller's team receives when the last flor step is rejected
func FlorRejectPoints(chain []Call) int {
	switch len(chain) {
	case 0:
		return 0
	case 1:
		return FlorPoints + 1
	}

	// rejecting a raise concedes the previous, already accepted, step
	return FlorAcceptPoints(chain[:len(chain)-1], 0)
}
