package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunner_PhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"output", PhaseOutput, &log})
	r.Register(recorder{"move", PhaseUpdate, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"events", PhasePreUpdate, &log})
	r.Register(recorder{"move2", PhaseUpdate, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "events", "move", "move2", "output"}, log)
	assert.Equal(t, 5, r.Len())
}

func TestRunner_TickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"move", PhaseUpdate, &log})

	r.TickPhase(PhaseInput, 0)
	r.TickPhase(PhaseInput, 0)
	assert.Equal(t, []string{"input", "input"}, log)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "Update", PhaseUpdate.String())
	assert.Equal(t, "Unknown", Phase(42).String())
}
