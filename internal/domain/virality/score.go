package virality

import (
	"fmt"
	"math"

	"github.com/forPelevin/viralcut/internal/types"
)

// Metric weights. Dislikes pull the score down.
const (
	wViews    = 0.4
	wLikes    = 0.3
	wDislikes = 0.1
	wComments = 0.15
	wShares   = 0.05
)

// Score returns the weighted log-compressed engagement of a video.
// Each counter enters as ln(1+m), so an all-zero record scores 0.
func Score(views, likes, dislikes, comments, shares int64) (float64, error) {
	if err := checkMetrics(map[string]int64{
		"views":    views,
		"likes":    likes,
		"dislikes": dislikes,
		"comments": comments,
		"shares":   shares,
	}); err != nil {
		return 0, err
	}
	score := wViews*math.Log1p(float64(views)) +
		wLikes*math.Log1p(float64(likes)) -
		wDislikes*math.Log1p(float64(dislikes)) +
		wComments*math.Log1p(float64(comments)) +
		wShares*math.Log1p(float64(shares))
	return score, nil
}

// Attach returns a copy of c with ViralScore set.
func Attach(c types.CandidateVideo) (types.CandidateVideo, error) {
	s, err := Score(c.ViewCount, c.LikeCount, c.DislikeCount, c.CommentCount, c.ShareCount)
	if err != nil {
		return c, err
	}
	c.ViralScore = s
	return c, nil
}

func checkMetrics(m map[string]int64) error {
	// fixed order keeps the error message deterministic
	for _, k := range []string{"views", "likes", "dislikes", "comments", "shares"} {
		if v := m[k]; v < 0 {
			return fmt.Errorf("%w: %s=%d", types.ErrInvalidMetric, k, v)
		}
	}
	return nil
}
