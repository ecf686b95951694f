package game

import "math"

// QuizResult is one answered count quiz
type QuizResult struct {
	Running   int     `json:"running"`
	True      float64 `json:"true"`
	Timestamp int64   `json:"timestamp"`
}

// CountAccuracy compares a player's counts with the real ones
type CountAccuracy struct {
	RunningCorrect bool    `json:"runningCorrect"`
	TrueCorrect    bool    `json:"trueCorrect"`
	RunningDiff    int     `json:"runningDiff"`
	TrueDiff       float64 `json:"trueDiff"`
}

// Accuracy grades a guess: the running count must be exact, the true count
// within half a point.
func Accuracy(guessRunning, running int, guessTrue, trueCount float64) CountAccuracy {
	rd := guessRunning - running
	if rd < 0 {
		rd = -rd
	}
	td := math.Round(math.Abs(guessTrue-trueCount)*10) / 10
	return CountAccuracy{
		RunningCorrect: rd == 0,
		TrueCorrect:    td <= 0.5,
		RunningDiff:    rd,
		TrueDiff:       td,
	}
}

// ShouldQuiz reports whether the hands dealt so far land on the quiz interval
func (m *Machine) ShouldQuiz() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shouldQuiz()
}

func (m *Machine) shouldQuiz() bool {
	every := m.settings.QuizEveryXHands
	return every > 0 && m.handsDealt > 0 && m.handsDealt%every == 0
}

// RecordQuiz stores the player's answer and grades it against the counts
func (m *Machine) RecordQuiz(running int, trueCount float64) CountAccuracy {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quiz = append(m.quiz, QuizResult{
		Running:   running,
		True:      trueCount,
		Timestamp: m.clock.Now().UnixMilli(),
	})
	acc := Accuracy(running, m.shoe.Running(), trueCount, m.shoe.TrueCount())
	m.logger.Debug("Quiz answered", "running", running, "actual", m.shoe.Running(), "correct", acc.RunningCorrect)
	return acc
}

// QuizResults returns the quiz history
func (m *Machine) QuizResults() []QuizResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QuizResult(nil), m.quiz...)
}

// SetMyCount stores the counts the player is keeping. Nil clears a value.
func (m *Machine) SetMyCount(running *int, trueCount *float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.myRunning = clonePtr(running)
	m.myTrue = clonePtr(trueCount)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
