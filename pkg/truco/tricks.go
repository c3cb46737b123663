package truco

import "truco-server/pkg/rules"

// resolveTrick returns the team that won the trick and the seat of the winning card
// When both teams share the highest strength the trick is a tie.
func resolveTrick(plays []Play, players []*Player) (Team, int) {
	best := 0
	leader := -1
	teams := make(map[Team]bool, 2)
	for _, play := range plays {
		s := rules.Strength(play.Card)
		switch {
		case s > best:
			best = s
			leader = play.Seat
			teams = map[Team]bool{players[play.Seat].Team: true}
		case s == best:
			teams[players[play.Seat].Team] = true
		}
	}

	if len(teams) > 1 {
		return Tie, -1
	}

	return players[leader].Team, leader
}

// resolveHand decides the hand from the trick results so far
// The second return value is false while the hand is undecided.
func resolveHand(results []Team, mano Team) (Team, bool) {
	wins := make(map[Team]int, 2)
	for _, r := range results {
		wins[r]++
	}

	for _, team := range []Team{TeamA, TeamB} {
		if wins[team] >= 2 {
			return team, true
		}
	}

	if len(results) < 2 {
		return "", false
	}

	first, second := results[0], results[1]
	if first == Tie && second != Tie {
		return second, true
	}

	if second == Tie && first != Tie {
		return first, true
	}

	if len(results) < 3 {
		return "", false
	}

	third := results[2]
	switch {
	case first == Tie && second == Tie && third != Tie:
		return third, true
	case first == Tie:
		return mano, true
	}

	// one trick each and the third tied
	return first, true
}
