package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	days   []DayRecord
	err    error
	closed bool
}

func (r *recorder) RecordDay(d DayRecord) error {
	r.days = append(r.days, d)
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	c := &recorder{}
	m := Multi{a, b, c}

	err := m.RecordDay(sampleDay())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.days, 1)
	assert.Len(t, c.days, 1)

	assert.NoError(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.True(t, c.closed)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	var j Journal = Discard{}
	assert.NoError(t, j.RecordDay(sampleDay()))
	assert.NoError(t, j.Close())
}
