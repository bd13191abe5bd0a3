package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smarthouse-core/internal/smarthome"
)

// appendTimeout bounds a single store append triggered by a message.
const appendTimeout = 10 * time.Second

// payload is the JSON body sensors publish. The timestamp is optional;
// absent means "now" at the time of ingestion.
type payload struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"ts,omitempty"`
}

// Ingestor subscribes to sensor measurement topics and appends readings
// through the repository facade.
type Ingestor struct {
	client *mqtt.Client
	repo   *smarthome.Repository
	logger *logging.Logger
	prefix string
	qos    byte
}

// New creates an Ingestor over a connected MQTT client.
func New(client *mqtt.Client, repo *smarthome.Repository, logger *logging.Logger, topicPrefix string, qos byte) *Ingestor {
	return &Ingestor{
		client: client,
		repo:   repo,
		logger: logger.With("component", "ingest"),
		prefix: topicPrefix,
		qos:    qos,
	}
}

// Start subscribes to the measurement topic tree.
// The wildcard subscription covers every device id under the prefix.
func (i *Ingestor) Start() error {
	topic := fmt.Sprintf("%s/sensor/+/measurement", i.prefix)
	if err := i.client.Subscribe(topic, i.qos, i.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	i.logger.Info("measurement ingest started", "topic", topic)
	return nil
}

// handleMessage parses and stores one published measurement.
// Parse failures are returned (and logged by the client wrapper), never fatal.
func (i *Ingestor) handleMessage(topic string, raw []byte) error {
	deviceID, err := deviceIDFromTopic(topic, i.prefix)
	if err != nil {
		return err
	}

	value, unit, ts, err := parsePayload(raw)
	if err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := i.repo.AppendMeasurementAt(ctx, deviceID, value, unit, ts); err != nil {
		return fmt.Errorf("appending measurement for device %s: %w", deviceID, err)
	}

	i.logger.Debug("measurement ingested",
		"device_id", deviceID,
		"value", value,
		"unit", unit,
	)
	return nil
}

// deviceIDFromTopic extracts the device id from a measurement topic.
// Expected shape: <prefix>/sensor/<device-id>/measurement.
func deviceIDFromTopic(topic, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/sensor/")
	if !ok {
		return "", fmt.Errorf("unexpected topic %q", topic)
	}
	deviceID, ok := strings.CutSuffix(rest, "/measurement")
	if !ok || deviceID == "" || strings.Contains(deviceID, "/") {
		return "", fmt.Errorf("unexpected topic %q", topic)
	}
	return deviceID, nil
}

// parsePayload decodes the measurement JSON and resolves its timestamp.
func parsePayload(raw []byte) (float64, string, time.Time, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, "", time.Time{}, fmt.Errorf("decoding payload: %w", err)
	}
	if p.Unit == "" {
		return 0, "", time.Time{}, fmt.Errorf("payload missing unit")
	}

	ts := time.Now().UTC()
	if p.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			return 0, "", time.Time{}, fmt.Errorf("parsing payload timestamp %q: %w", p.Timestamp, err)
		}
		ts = parsed.UTC()
	}

	return p.Value, p.Unit, ts, nil
}
