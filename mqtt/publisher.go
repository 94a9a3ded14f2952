package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/angas/tibberwatch-go/coordinator"
)

// Publisher pushes the per-home analytics to an MQTT broker after
// every refresh, as retained messages so late subscribers get the
// last known state immediately.
type Publisher struct {
	client      mqtt.Client
	logger      *slog.Logger
	topicPrefix string
}

func NewPublisher(broker string, port int16, username, password, topicPrefix string) *Publisher {
	logger := slog.Default().With("module", "mqtt")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID("tibberwatch")
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqtt.CRITICAL = newMqttLogger(logger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(logger, slog.LevelError)
	mqtt.WARN = newMqttLogger(logger, slog.LevelWarn)

	return &Publisher{
		client:      mqtt.NewClient(opts),
		logger:      logger,
		topicPrefix: topicPrefix,
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}

// stateMessage is the compact per-home summary published on the state
// topic. Automation consumers that want the full series use the HTTP
// API instead.
type stateMessage struct {
	HomeID           string  `json:"home_id"`
	HomeName         string  `json:"home_name"`
	CurrentPrice     float64 `json:"current_price"`
	PriceLevel       string  `json:"price_level"`
	AveragePrice     float64 `json:"average_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	DeviationPercent float64 `json:"deviation_percent"`
	Rank             int     `json:"rank"`
	Percentile       float64 `json:"percentile"`
	FetchedAt        string  `json:"fetched_at"`
}

// Publish writes the snapshots to the broker. Errors are logged per
// topic, a broker outage must never fail a refresh cycle.
func (p *Publisher) Publish(snapshots map[string]coordinator.Snapshot) {
	if !p.client.IsConnectionOpen() {
		p.logger.Debug("MQTT not connected, skipping publish")
		return
	}

	for id, s := range snapshots {
		state := stateMessage{
			HomeID:           s.HomeID,
			HomeName:         s.HomeName,
			CurrentPrice:     s.Current.Total,
			PriceLevel:       string(s.Current.Level),
			AveragePrice:     s.AveragePrice,
			MinPrice:         s.MinPrice,
			MaxPrice:         s.MaxPrice,
			DeviationPercent: s.DeviationPercent,
			Rank:             s.Rank,
			Percentile:       s.Percentile,
			FetchedAt:        s.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
		}

		p.publishJSON(p.topic(id, "state"), state)
		p.publishRaw(p.topic(id, "economical"), strconv.FormatBool(s.BatteryIsEconomical))
		p.publishJSON(p.topic(id, "best_window"), s.BestWindow)
		if s.NextCheapWindow != nil {
			p.publishJSON(p.topic(id, "next_cheap_window"), s.NextCheapWindow)
		}
	}
}

func (p *Publisher) topic(homeID, leaf string) string {
	return fmt.Sprintf("%s/%s/%s", p.topicPrefix, homeID, leaf)
}

func (p *Publisher) publishJSON(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("marshalling MQTT payload", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	p.publishRaw(topic, string(payload))
}

func (p *Publisher) publishRaw(topic, payload string) {
	token := p.client.Publish(topic, 0, true, payload)
	if token.Wait() && token.Error() != nil {
		p.logger.Error("publishing MQTT message", slog.String("topic", topic), slog.Any("error", token.Error()))
	}
}
