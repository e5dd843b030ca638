// Package telemetry streams episodes to an MQTT broker: one message per tick
// and a retained summary when the episode ends.
package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
	"github.com/san-kum/cruisectl/internal/metrics"
)

const DefaultTopicPrefix = "cruisectl"

// Publisher is the part of mqtt.Client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	if !strings.Contains(broker, ":") {
		broker += ":1883"
	}
	return "tcp://" + broker
}

// Connect dials the broker and waits for the session.
func Connect(opts Options, logger log.FieldLogger) (mqtt.Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.ClientID == "" {
		opts.ClientID = fmt.Sprintf("cruisectl-%d", time.Now().UnixNano())
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(brokerURL(opts.Broker))
	co.SetClientID(opts.ClientID)
	co.SetUsername(opts.Username)
	co.SetPassword(opts.Password)
	co.SetConnectTimeout(opts.Timeout)
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WithError(err).Warn("MQTT connection lost")
	})

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", opts.Broker, err)
	}
	logger.WithField("broker", opts.Broker).Info("Connected to MQTT broker")
	return client, nil
}

type TickMessage struct {
	Scenario       string   `json:"scenario"`
	Tick           int      `json:"tick"`
	Time           float64  `json:"time"`
	EgoVelocity    float64  `json:"ego_velocity"`
	DesiredSpeed   float64  `json:"desired_speed"`
	DistanceToLead *float64 `json:"distance_to_lead"`
	LeadSpeed      float64  `json:"lead_speed"`
	Command        *float64 `json:"command,omitempty"`
	Zone           string   `json:"zone,omitempty"`
}

type Summary struct {
	Scenario string             `json:"scenario"`
	Rows     int                `json:"rows"`
	Duration float64            `json:"duration"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Sink publishes an episode. It is an episode.Observer and episode.Finisher.
type Sink struct {
	pub      Publisher
	prefix   string
	scenario string
	scores   *metrics.Set
	timeout  time.Duration
}

func NewSink(pub Publisher, prefix, scenario string, distanceThreshold float64) *Sink {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Sink{
		pub:      pub,
		prefix:   prefix,
		scenario: scenario,
		scores:   metrics.Standard(distanceThreshold),
		timeout:  2 * time.Second,
	}
}

func (s *Sink) TickTopic() string    { return s.prefix + "/" + s.scenario + "/tick" }
func (s *Sink) SummaryTopic() string { return s.prefix + "/" + s.scenario + "/summary" }

func (s *Sink) OnTick(t episode.Tick) error {
	msg := TickMessage{
		Scenario:     s.scenario,
		Tick:         t.Index,
		Time:         t.Time,
		EgoVelocity:  t.Row.EgoVelocity,
		DesiredSpeed: t.Row.TargetSpeed,
		LeadSpeed:    t.Row.LeadVelocity,
	}
	if d, ok := t.Row.DistanceToLead.Distance(); ok {
		msg.DistanceToLead = &d
	}
	if t.Applied {
		c := t.Command
		msg.Command = &c
	}
	if t.Decision != nil {
		msg.Zone = t.Decision.Zone.String()
	} else if !t.Row.DistanceToLead.Usable() {
		msg.Zone = acc.ZoneNoLead.String()
	}
	return s.publish(s.TickTopic(), false, msg)
}

func (s *Sink) Finish(tr *episode.Trace) error {
	return s.publish(s.SummaryTopic(), true, Summary{
		Scenario: s.scenario,
		Rows:     len(tr.Rows),
		Duration: tr.Duration(),
		Metrics:  s.scores.Evaluate(tr),
	})
}

func (s *Sink) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := s.pub.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("mqtt publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}
