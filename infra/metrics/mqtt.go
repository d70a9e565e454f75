package metrics

import (
	"encoding/json"
	"errors"

	coremetrics "github.com/kilianp07/chargecast/core/metrics"
)

const defaultForecastTopic = "chargecast/forecast"

// publisher is satisfied by *mqtt.PahoClient.
type publisher interface {
	Publish(topic string, payload []byte) error
	Disconnect()
}

// MQTTSink publishes forecasts as JSON documents. Failures go to the
// "<topic>/failures" subtopic.
type MQTTSink struct {
	pub   publisher
	topic string
}

// NewMQTTSink wraps a connected publisher.
func NewMQTTSink(pub publisher, topic string) *MQTTSink {
	if topic == "" {
		topic = defaultForecastTopic
	}
	return &MQTTSink{pub: pub, topic: topic}
}

// RecordForecast publishes the forecast.
func (s *MQTTSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	if ev.Forecast == nil {
		return errors.New("mqtt sink: nil forecast")
	}
	payload, err := json.Marshal(ev.Forecast)
	if err != nil {
		return err
	}
	return s.pub.Publish(s.topic, payload)
}

// RecordFailure publishes the failure.
func (s *MQTTSink) RecordFailure(ev coremetrics.FailureEvent) error {
	payload, err := json.Marshal(struct {
		RunID  string `json:"run_id"`
		Source string `json:"source"`
		Stage  string `json:"stage"`
		Error  string `json:"error"`
		Time   int64  `json:"timestamp"`
	}{ev.RunID, ev.Source, ev.Stage, ev.Error, ev.Time.UnixMilli()})
	if err != nil {
		return err
	}
	return s.pub.Publish(s.topic+"/failures", payload)
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.pub.Disconnect()
	return nil
}
