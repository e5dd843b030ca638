package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeBroker struct {
	msgs []published
	err  error
}

func (f *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.msgs = append(f.msgs, published{topic, retained, payload.([]byte)})
	return doneToken{err: f.err}
}

func TestBrokerURL(t *testing.T) {
	assert.Equal(t, "tcp://localhost:1883", brokerURL("localhost"))
	assert.Equal(t, "tcp://10.0.0.2:1884", brokerURL("10.0.0.2:1884"))
	assert.Equal(t, "ssl://broker:8883", brokerURL("ssl://broker:8883"))
}

func TestSinkPublishesTicksAndSummary(t *testing.T) {
	broker := &fakeBroker{}
	sink := NewSink(broker, "", "follow", 30)

	row := episode.TraceRow{EgoVelocity: 20, TargetSpeed: 25, DistanceToLead: acc.LeadAt(40), LeadVelocity: 22}
	dec := acc.Decision{Acceleration: -2, Zone: acc.ZoneCaution}
	require.NoError(t, sink.OnTick(episode.Tick{Index: 0, Row: row, Command: -2, Decision: &dec, Applied: true}))

	last := episode.TraceRow{EgoVelocity: 19.8, TargetSpeed: 25, DistanceToLead: acc.NoLead(), LeadVelocity: 22}
	require.NoError(t, sink.OnTick(episode.Tick{Index: 1, Time: 0.1, Row: last}))

	tr := &episode.Trace{Name: "follow", Dt: 0.1, Rows: []episode.TraceRow{row, last}, Commands: []float64{-2}}
	require.NoError(t, sink.Finish(tr))

	require.Len(t, broker.msgs, 3)
	assert.Equal(t, "cruisectl/follow/tick", broker.msgs[0].topic)
	assert.False(t, broker.msgs[0].retained)

	var first TickMessage
	require.NoError(t, json.Unmarshal(broker.msgs[0].payload, &first))
	assert.Equal(t, "caution", first.Zone)
	require.NotNil(t, first.Command)
	assert.Equal(t, -2.0, *first.Command)
	require.NotNil(t, first.DistanceToLead)
	assert.Equal(t, 40.0, *first.DistanceToLead)

	var second TickMessage
	require.NoError(t, json.Unmarshal(broker.msgs[1].payload, &second))
	assert.Nil(t, second.Command)
	assert.Nil(t, second.DistanceToLead)
	assert.Equal(t, "no-lead", second.Zone)

	assert.Equal(t, "cruisectl/follow/summary", broker.msgs[2].topic)
	assert.True(t, broker.msgs[2].retained)
	var summary Summary
	require.NoError(t, json.Unmarshal(broker.msgs[2].payload, &summary))
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 40.0, summary.Metrics["min_gap"])
	assert.Equal(t, 2.0, summary.Metrics["control_effort"])
}

func TestSinkPublishError(t *testing.T) {
	broker := &fakeBroker{err: errors.New("not connected")}
	sink := NewSink(broker, "acc", "follow", 30)

	err := sink.OnTick(episode.Tick{})
	assert.ErrorContains(t, err, "not connected")
	assert.Equal(t, "acc/follow/tick", broker.msgs[0].topic)
}
