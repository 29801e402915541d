// Package telemetry publishes device readings, alerts and status over
// MQTT and accepts remote commands.
package telemetry

import (
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/niscmed/wearcore/pkg/config"
)

// Handler is the callback when a message is received. The topic is
// relative to the queue's prefix.
type Handler func(topic string, payload []byte)

// MatchTopic matches a topic against a subscription pattern with the
// usual + and # wildcards.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	if len(tokensP) > len(tokensT) {
		return false
	}
	for i, token := range tokensP {
		if token == "+" {
			continue
		}
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

// Queue wraps the MQTT client with a topic prefix and a subscription
// registry that survives reconnects.
type Queue struct {
	Client paho.Client

	prefix string

	subsLock sync.RWMutex
	subs     map[string][]Handler
}

// NewQueue builds a queue from the uplink configuration. Connect must
// be called before use.
func NewQueue(cfg config.MQTTConfig) *Queue {
	q := &Queue{
		prefix: cfg.TopicPrefix + "/",
		subs:   make(map[string][]Handler),
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "wearcore-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetOnConnectHandler(q.onConnect).
		SetConnectionLostHandler(q.onConnectionLost)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	q.Client = paho.NewClient(opts)
	return q
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub registers a handler for a topic pattern.
func (q *Queue) Sub(topic string, handler Handler) {
	q.subsLock.Lock()
	handlers := q.subs[topic]
	q.subs[topic] = append(handlers, handler)
	q.subsLock.Unlock()

	if handlers == nil && q.Client.IsConnected() {
		glog.V(2).Infof("SUB %q", q.prefix+topic)
		q.Client.Subscribe(q.prefix+topic, 0, q.dispatch)
	}
}

// Pub publishes to a topic under the queue's prefix.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	glog.V(2).Infof("PUB %q %d bytes", q.prefix+topic, len(payload))
	return q.Client.Publish(q.prefix+topic, 0, false, payload)
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("uplink connected")
	filters := make(map[string]byte)
	q.subsLock.RLock()
	for topic := range q.subs {
		filters[q.prefix+topic] = 0
	}
	q.subsLock.RUnlock()
	if len(filters) > 0 {
		q.Client.SubscribeMultiple(filters, q.dispatch)
	}
}

func (q *Queue) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("uplink connection lost: %v", err)
}

func (q *Queue) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.prefix) {
		return
	}
	topic = topic[len(q.prefix):]
	glog.V(2).Infof("RCV %q", topic)

	var handlers []Handler
	q.subsLock.RLock()
	for pattern, hs := range q.subs {
		if MatchTopic(topic, pattern) {
			handlers = append(handlers, hs...)
		}
	}
	q.subsLock.RUnlock()

	payload := msg.Payload()
	for _, h := range handlers {
		h(topic, payload)
	}
}
