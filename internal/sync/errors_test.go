package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	t.Run("clean tally has no error", func(t *testing.T) {
		var tally Tally
		assert.Zero(t, tally.Count())
		assert.NoError(t, tally.Err())
	})

	t.Run("records carry entry identity", func(t *testing.T) {
		var tally Tally
		tally.Record("/dst/a.txt", errors.New("boom"))
		tally.Record("/dst/b.txt", errors.New("bang"))

		assert.Equal(t, 2, tally.Count())
		assert.ErrorContains(t, tally.Err(), "/dst/a.txt")
		assert.ErrorContains(t, tally.Err(), "bang")
	})
}
