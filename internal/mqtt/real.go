package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/stopwatch/internal/logger"
	"github.com/sweeney/stopwatch/internal/logic"
)

// Options configures the real publisher.
type Options struct {
	Broker     string
	ClientID   string
	BufferSize int
	// OnCommand, if set, receives control commands from TopicControl.
	OnCommand CommandFunc
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client    paho.Client
	topic     string
	onCommand CommandFunc

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. If the broker
// is not reachable within the connect timeout the publisher is still
// returned; the client keeps retrying and messages are buffered meanwhile.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.Broker == "" {
		return nil, fmt.Errorf("no broker configured")
	}

	p := &RealPublisher{
		topic:     Topic,
		onCommand: o.OnCommand,
		buf:       newRingBuffer(o.BufferSize),
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warnf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		logger.Warnf("mqtt: broker %s not reachable yet, buffering", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect subscribes to the control topic and replays buffered messages.
// Runs on every (re)connect.
func (p *RealPublisher) onConnect(c paho.Client) {
	logger.Infof("mqtt: connected")

	if p.onCommand != nil {
		token := c.Subscribe(TopicControl, 1, p.handleCommand)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			logger.Errorf("mqtt: subscribe %s: %v", TopicControl, token.Error())
		}
	}

	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if len(msgs) > 0 {
		logger.Infof("mqtt: replaying %d buffered messages", len(msgs))
	}
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

func (p *RealPublisher) handleCommand(_ paho.Client, msg paho.Message) {
	kind, err := ParseCommand(msg.Payload())
	if err != nil {
		logger.Warnf("mqtt: ignoring control message: %v", err)
		return
	}
	p.onCommand(kind)
}

// Publish sends a stopwatch event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	if err := p.send(p.topic, 0, false, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	if err := p.send(TopicSystem, 1, event.Retained, payload); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout")
	}
	return token.Error()
}

// IsConnected reports whether the broker connection is currently open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
