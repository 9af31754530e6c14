package scoring

import (
	"fmt"
	"math"

	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

const (
	// BallsPerOver is the number of legal deliveries in an over.
	BallsPerOver = 6
	// MaxWickets ends an innings as all out.
	MaxWickets = 10
	// recentBallsKept matches the ball-by-ball strip shown to scorers.
	recentBallsKept = 12
)

// IsLegalDelivery reports whether a delivery counts toward the over.
func IsLegalDelivery(extra domainscoring.ExtraType) bool {
	switch extra {
	case domainscoring.ExtraNone, domainscoring.ExtraBye, domainscoring.ExtraLegBye, "":
		return true
	}
	return false
}

// OversDisplay formats legal balls as "<completed overs>.<balls in current over>".
func OversDisplay(legalBalls int) string {
	if legalBalls < 0 {
		legalBalls = 0
	}
	return fmt.Sprintf("%d.%d", legalBalls/BallsPerOver, legalBalls%BallsPerOver)
}

// RunRate is runs per six legal balls, rounded to two places.
func RunRate(runs, legalBalls int) float64 {
	if legalBalls <= 0 {
		return 0
	}
	return round2(float64(runs) * BallsPerOver / float64(legalBalls))
}

// RequiredRunRate is the rate needed to score the remaining runs. It returns 0
// when nothing is needed or no balls remain.
func RequiredRunRate(needed, ballsLeft int) float64 {
	if needed <= 0 || ballsLeft <= 0 {
		return 0
	}
	return round2(float64(needed) * BallsPerOver / float64(ballsLeft))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
