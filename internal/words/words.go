// internal/words/words.go
//
// Word list management for the activity server.
//
// Responsibilities:
//   - Load the answer and valid-guess lists from configured files or fall back
//     to the lists embedded in the assets package.
//   - Keep a lookup set for valid guesses (answers ∪ extra guesses).
//   - Expose a List value so the game engine can be built over any word list (tests use
//     tiny hand-written lists).
//
// Initialization behavior (Init):
//   1. If both paths are given (config words_answers_file / words_allowed_file),
//      load answers from the first and allowed guesses from the second.
//   2. If only the allowed path is given,
//      load that file and use it for both answers and allowed guesses.
//   3. Otherwise use the embedded assets/answers.txt and assets/allowed.txt.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); everything else is dropped.
//   • Lists are normalized to lowercase.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/wordle/apps/activity-server/assets"
)

// WordLength is the fixed number of letters in every answer and guess.
const WordLength = 5

// ErrEmptyAnswers is returned when no usable answer word was loaded.
var ErrEmptyAnswers = errors.New("words: answers list is empty")

// List is an immutable pair of answers and valid guesses.
// The valid set always contains every answer.
type List struct {
	answers []string
	valid   map[string]struct{}
}

// NewList normalizes both inputs and builds a List. Invalid entries are dropped.
func NewList(answers, valid []string) *List {
	l := &List{valid: make(map[string]struct{}, len(answers)+len(valid))}
	for _, w := range answers {
		if w = normalize(w); isWord(w) {
			l.answers = append(l.answers, w)
			l.valid[w] = struct{}{}
		}
	}
	for _, w := range valid {
		if w = normalize(w); isWord(w) {
			l.valid[w] = struct{}{}
		}
	}
	return l
}

// Answers returns the candidate secret words in load order.
func (l *List) Answers() []string { return l.answers }

// IsAllowed reports whether w (case-insensitive, trimmed) is an accepted guess.
func (l *List) IsAllowed(w string) bool {
	_, ok := l.valid[normalize(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.valid)
}

// Select resolves the secret word for an instance using sel.
// The second result is empty when the list has no answers.
func (l *List) Select(sel Selector, instanceID string) (int, string) {
	if len(l.answers) == 0 {
		return 0, ""
	}
	i := sel.Index(instanceID, len(l.answers))
	return i, l.answers[i]
}

var (
	initOnce    sync.Once
	defaultList *List
	initialErr  error
)

// Init loads the process-wide word lists exactly once. Empty paths fall back to
// the embedded lists; an allowed file alone doubles as the answers list.
// Returns ErrEmptyAnswers if the answers list ends up empty.
func Init(answersPath, allowedPath string) error {
	initOnce.Do(func() {
		var ansList, allowList []string

		switch {
		case answersPath != "" && allowedPath != "":
			var err error
			if ansList, err = readWordFile(answersPath); err != nil {
				initialErr = err
				return
			}
			if allowList, err = readWordFile(allowedPath); err != nil {
				initialErr = err
				return
			}

		case answersPath == "" && allowedPath != "":
			var err error
			if allowList, err = readWordFile(allowedPath); err != nil {
				initialErr = err
				return
			}
			ansList = allowList

		default:
			var err error
			if ansList, err = assets.AnswersList(); err != nil {
				initialErr = err
				return
			}
			if allowList, err = assets.AllowedList(); err != nil {
				initialErr = err
				return
			}
		}

		defaultList = NewList(ansList, allowList)
		if len(defaultList.answers) == 0 {
			initialErr = ErrEmptyAnswers
		}
	})
	return initialErr
}

// Default returns the list loaded by Init, or nil if Init was never called.
func Default() *List { return defaultList }

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := normalize(sc.Text()); isWord(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func normalize(w string) string { return strings.ToLower(strings.TrimSpace(w)) }

// isWord reports whether s is exactly WordLength lowercase ASCII letters.
func isWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
