package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/protobuf/proto"

	"github.com/niscmed/wearcore/pkg/config"
	wearpb "github.com/niscmed/wearcore/pkg/proto/wear/v1"
	"github.com/niscmed/wearcore/pkg/telemetry"
)

var (
	brokerURL   = "tcp://127.0.0.1:1883"
	topicPrefix = "wearcore"
	deviceID    string
)

func init() {
	if val := os.Getenv("WEARCORE_MQTT_BROKER"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "broker", brokerURL, "MQTT broker URL.")
	flag.StringVar(&topicPrefix, "prefix", topicPrefix, "Topic prefix.")
	flag.StringVar(&deviceID, "device", deviceID, "Device id to control.")
}

type console struct {
	queue    *telemetry.Queue
	deviceID string
	watching int32
}

func (cs *console) command(c *ishell.Context, cmd string) {
	if cs.deviceID == "" {
		c.Err(fmt.Errorf("no device selected, run: use <device-id>"))
		return
	}
	token := cs.queue.Pub(cs.deviceID+"/cmd/"+cmd, nil)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		c.Err(token.Error())
		return
	}
	c.Printf("sent %s to %s\n", cmd, cs.deviceID)
}

func (cs *console) use(c *ishell.Context, id string) {
	cs.deviceID = id
	c.Printf("using device %s\n", id)

	cs.queue.Sub(id+"/alerts", func(_ string, payload []byte) {
		var alert wearpb.DeviceAlert
		if err := proto.Unmarshal(payload, &alert); err != nil {
			return
		}
		fmt.Printf("\n[ALERT %s] %s value=%.1f threshold=%.1f\n",
			alert.GetSeverity(), alert.GetMessage(), alert.GetValue(), alert.GetThreshold())
	})
	cs.queue.Sub(id+"/status", func(_ string, payload []byte) {
		var status wearpb.DeviceStatus
		if err := proto.Unmarshal(payload, &status); err != nil {
			return
		}
		fmt.Printf("\n[STATUS] state=%s uptime=%ds samples=%d alerts=%d errors=%d\n",
			status.GetState(), status.GetUptimeSeconds(), status.GetTotalSamples(),
			status.GetAlertCount(), status.GetErrorCount())
	})
	cs.queue.Sub(id+"/vitals", func(_ string, payload []byte) {
		if atomic.LoadInt32(&cs.watching) == 0 {
			return
		}
		var sample wearpb.VitalSample
		if err := proto.Unmarshal(payload, &sample); err != nil {
			return
		}
		fmt.Printf("%s = %.1f (q=%d, seq=%d)\n",
			sample.GetType(), sample.GetValue(), sample.GetQuality(), sample.GetSeq())
	})
}

func main() {
	flag.Parse()

	cs := &console{
		queue: telemetry.NewQueue(config.MQTTConfig{
			Broker:      brokerURL,
			TopicPrefix: topicPrefix,
		}),
	}
	if token := cs.queue.Connect(); token.Wait() && token.Error() != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", brokerURL, token.Error())
		os.Exit(1)
	}
	defer cs.queue.Close()

	shell := ishell.New()
	shell.Println("wearcore console, type 'help' for commands")
	shell.SetPrompt("wear> ")

	shell.AddCmd(&ishell.Cmd{
		Name: "use",
		Help: "use <device-id>: select the device to control",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: use <device-id>"))
				return
			}
			cs.use(c, c.Args[0])
		},
	})
	for _, cmd := range []struct{ name, help string }{
		{"suspend", "suspend the acquisition and processing threads"},
		{"resume", "resume suspended threads"},
		{"maintenance", "put the device into maintenance mode"},
		{"exit-maintenance", "return the device to ready"},
		{"status", "request an immediate status report"},
		{"shutdown", "trigger an emergency shutdown"},
	} {
		name := cmd.name
		shell.AddCmd(&ishell.Cmd{
			Name: name,
			Help: cmd.help,
			Func: func(c *ishell.Context) { cs.command(c, name) },
		})
	}
	shell.AddCmd(&ishell.Cmd{
		Name: "watch",
		Help: "toggle live vitals output",
		Func: func(c *ishell.Context) {
			if atomic.CompareAndSwapInt32(&cs.watching, 0, 1) {
				c.Println("watching vitals, run 'watch' again to stop")
				return
			}
			atomic.StoreInt32(&cs.watching, 0)
			c.Println("stopped watching")
		},
	})

	if deviceID != "" {
		cs.deviceID = deviceID
	}
	if args := flag.Args(); len(args) > 0 {
		if err := shell.Process(args...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	shell.Run()
}
