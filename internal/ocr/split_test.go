package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitQuestion(t *testing.T) {
	t.Run("numbered options", func(t *testing.T) {
		q, opts := SplitQuestion("Which planet is closest to the sun?\n1. Mercury\n2. Venus\n3. Mars")

		assert.Equal(t, "Which planet is closest to the sun?", q)
		assert.Equal(t, []string{"Mercury", "Venus", "Mars"}, opts)
	})

	t.Run("lettered options with parens", func(t *testing.T) {
		q, opts := SplitQuestion("Pick the Greek letter\nA) Alpha\nB) Beta\nC) Gamma")

		assert.Equal(t, "Pick the Greek letter", q)
		assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, opts)
	})

	t.Run("bulleted options", func(t *testing.T) {
		_, opts := SplitQuestion("Choose\n- First\n- Second")
		assert.Equal(t, []string{"First", "Second"}, opts)
	})

	t.Run("question wraps across lines", func(t *testing.T) {
		q, opts := SplitQuestion("In which year did the\nBerlin Wall fall?\n1. 1987\n2. 1989")

		assert.Equal(t, "In which year did the Berlin Wall fall?", q)
		assert.Equal(t, []string{"1987", "1989"}, opts)
	})

	t.Run("option wraps across lines", func(t *testing.T) {
		_, opts := SplitQuestion("Who wrote One Hundred Years of Solitude?\n1. Gabriel Garcia\nMarquez\n2. Pablo Neruda")

		assert.Equal(t, []string{"Gabriel Garcia Marquez", "Pablo Neruda"}, opts)
	})

	t.Run("no markers means no options", func(t *testing.T) {
		q, opts := SplitQuestion("What is two plus two?")

		assert.Equal(t, "What is two plus two?", q)
		assert.Empty(t, opts)
	})

	t.Run("blank lines are dropped", func(t *testing.T) {
		q, opts := SplitQuestion("\nTrue or false?\n\n1. True\n\n2. False\n")

		assert.Equal(t, "True or false?", q)
		assert.Equal(t, []string{"True", "False"}, opts)
	})

	t.Run("empty input", func(t *testing.T) {
		q, opts := SplitQuestion("")

		assert.Empty(t, q)
		assert.Empty(t, opts)
	})
}
