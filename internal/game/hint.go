package game

import (
	"math/rand/v2"

	"github.com/samber/lo"
)

// Rand is the randomness source for hints. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Hint reveals one letter of the secret word.
type Hint struct {
	Letter   string `json:"letter"`
	Position int    `json:"position"`
}

// HintPicker chooses a position that no verdict row has confirmed yet.
// Two calls with the same rows may reveal different positions.
type HintPicker struct {
	Rand Rand
}

// Pick returns a random hint among positions never verdicted Correct.
// Returns ErrNoHints when every position is already known.
func (p HintPicker) Pick(target string, rows []Row) (Hint, error) {
	known := make(map[int]struct{}, WordLength)
	for _, row := range rows {
		for i, v := range row {
			if v == Correct {
				known[i] = struct{}{}
			}
		}
	}
	candidates := lo.Filter(lo.Range(len(target)), func(i int, _ int) bool {
		_, ok := known[i]
		return !ok
	})
	if len(candidates) == 0 {
		return Hint{}, ErrNoHints
	}

	r := p.Rand
	if r == nil {
		r = globalRand{}
	}
	pos := candidates[r.IntN(len(candidates))]
	return Hint{Letter: string(target[pos]), Position: pos}, nil
}
