package usecase

// Points awarded per prediction. These are the only values a prediction can
// earn, which keeps score distributions enumerable.
const (
	PointsExactScore    = 5
	PointsOutcomeAndLeg = 3
	PointsOutcome       = 2
	PointsSingleLeg     = 1
	PointsMiss          = 0
)

// PointScale lists every awardable value in ascending order.
var PointScale = []int{PointsMiss, PointsSingleLeg, PointsOutcome, PointsOutcomeAndLeg, PointsExactScore}

// PredictionPoints scores one prediction against a final result. Exact
// scorelines earn 5, a correct outcome with one side exact earns 3, a bare
// correct outcome earns 2, a single exact side with the wrong outcome earns 1.
func PredictionPoints(predHome, predAway, actualHome, actualAway int) int {
	exactHome := predHome == actualHome
	exactAway := predAway == actualAway
	if exactHome && exactAway {
		return PointsExactScore
	}

	sameOutcome := matchOutcome(predHome, predAway) == matchOutcome(actualHome, actualAway)
	oneLeg := exactHome || exactAway
	switch {
	case sameOutcome && oneLeg:
		return PointsOutcomeAndLeg
	case sameOutcome:
		return PointsOutcome
	case oneLeg:
		return PointsSingleLeg
	default:
		return PointsMiss
	}
}

func matchOutcome(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	default:
		return 0
	}
}
