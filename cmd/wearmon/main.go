package main

//go-build: CGO_ENABLED=0

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/golang/protobuf/proto"
	"golang.org/x/net/websocket"

	"github.com/niscmed/wearcore/pkg/config"
	wearpb "github.com/niscmed/wearcore/pkg/proto/wear/v1"
	"github.com/niscmed/wearcore/pkg/telemetry"
)

var (
	brokerURL   = "tcp://127.0.0.1:1883"
	topicPrefix = "wearcore"
	listenAddr  = ""
)

func init() {
	if val := os.Getenv("WEARCORE_MQTT_BROKER"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "broker", brokerURL, "MQTT broker URL.")
	flag.StringVar(&topicPrefix, "prefix", topicPrefix, "Topic prefix.")
	flag.StringVar(&listenAddr, "listen", listenAddr, "Serve a websocket live feed on this address (e.g. :8080).")
}

// event is one decoded message for logging and the live feed.
type event struct {
	Topic string      `json:"topic"`
	Kind  string      `json:"kind"`
	Body  interface{} `json:"body"`
}

// feed fans events out to connected websocket clients.
type feed struct {
	lock    sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newFeed() *feed {
	return &feed{clients: make(map[*websocket.Conn]chan []byte)}
}

func (f *feed) publish(ev event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	f.lock.Lock()
	for _, ch := range f.clients {
		select {
		case ch <- payload:
		default: // slow client, drop
		}
	}
	f.lock.Unlock()
}

func (f *feed) serve(conn *websocket.Conn) {
	ch := make(chan []byte, 16)
	f.lock.Lock()
	f.clients[conn] = ch
	f.lock.Unlock()
	defer func() {
		f.lock.Lock()
		delete(f.clients, conn)
		f.lock.Unlock()
	}()
	for payload := range ch {
		if err := websocket.Message.Send(conn, string(payload)); err != nil {
			return
		}
	}
}

func decode(topic string, payload []byte) (event, bool) {
	ev := event{Topic: topic}
	switch {
	case strings.HasSuffix(topic, "/vitals"):
		var sample wearpb.VitalSample
		if err := proto.Unmarshal(payload, &sample); err != nil {
			return ev, false
		}
		ev.Kind, ev.Body = "vitals", &sample
	case strings.HasSuffix(topic, "/alerts"):
		var alert wearpb.DeviceAlert
		if err := proto.Unmarshal(payload, &alert); err != nil {
			return ev, false
		}
		ev.Kind, ev.Body = "alert", &alert
	case strings.HasSuffix(topic, "/status"):
		var status wearpb.DeviceStatus
		if err := proto.Unmarshal(payload, &status); err != nil {
			return ev, false
		}
		ev.Kind, ev.Body = "status", &status
	default:
		ev.Kind, ev.Body = "raw", string(payload)
	}
	return ev, true
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	queue := telemetry.NewQueue(config.MQTTConfig{
		Broker:      brokerURL,
		TopicPrefix: topicPrefix,
	})
	f := newFeed()

	queue.Sub("#", func(topic string, payload []byte) {
		ev, ok := decode(topic, payload)
		if !ok {
			log.Printf("%s: bad message (%d bytes)", topic, len(payload))
			return
		}
		log.Printf("%s: [%s] %v", topic, ev.Kind, ev.Body)
		f.publish(ev)
	})

	if token := queue.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer queue.Close()

	if listenAddr != "" {
		http.Handle("/feed", websocket.Handler(f.serve))
		log.Printf("live feed on ws://%s/feed", listenAddr)
		log.Fatalln(http.ListenAndServe(listenAddr, nil))
	}
	<-(chan struct{})(nil)
}
