package background

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/covidtrack/covid19-api/pipeline"
)

func TestNewUpdaterDisabled(t *testing.T) {
	u, err := NewUpdater(DisabledSchedule, &pipeline.Pipeline{})
	assert.NoError(t, err)
	assert.Nil(t, u.cron, "disabled schedule must not register a cron")

	u.Start()
	select {
	case <-u.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("stop of a disabled updater must return immediately")
	}
}

func TestNewUpdaterValidSchedule(t *testing.T) {
	u, err := NewUpdater("0 0 2 * * *", &pipeline.Pipeline{})
	assert.NoError(t, err)
	assert.NotNil(t, u.cron)
}

func TestNewUpdaterInvalidSchedule(t *testing.T) {
	_, err := NewUpdater("not a schedule", &pipeline.Pipeline{})
	assert.Error(t, err)
}
