package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"garage_gateway/internal/logger"
)

// Sentinel errors for bus operations.
var (
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrNotConnected     = errors.New("mqtt: not connected")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe failed")
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
)

// Config holds broker connection settings.
type Config struct {
	Broker   string
	Port     int
	ClientID string
	Username string
	Password string

	// OnConnectionChange is invoked on every connect/disconnect transition
	// (also on auto-reconnect). Optional.
	OnConnectionChange func(connected bool)
}

// MessageHandler is the callback for received messages. Handlers run on
// paho goroutines and should not block for long; returned errors are
// logged, not surfaced to the broker.
type MessageHandler func(topic string, payload []byte) error

// Client wraps paho.mqtt.golang. All methods are safe for concurrent use;
// subscriptions are tracked and restored after an auto-reconnect.
type Client struct {
	client pahomqtt.Client
	cfg    Config
	log    *logger.Logger

	subMu         sync.RWMutex
	subscriptions map[string]subscription

	connMu    sync.RWMutex
	connected bool
}

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// Connect dials the broker and blocks until the initial connection is
// established or times out. Auto-reconnect with backoff stays enabled for
// the lifetime of the client.
func Connect(cfg Config, log *logger.Logger) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		log:           log,
		subscriptions: make(map[string]subscription),
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleConnectionLost(err) })

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously; mark connected here so
	// IsConnected is true as soon as Connect returns.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.restoreSubscriptions()

	if c.cfg.OnConnectionChange != nil {
		c.cfg.OnConnectionChange(true)
	}
}

func (c *Client) handleConnectionLost(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if c.log != nil {
		c.log.Warnw("mqtt_connection_lost", "err", err)
	}
	if c.cfg.OnConnectionChange != nil {
		c.cfg.OnConnectionChange(false)
	}
}

func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// IsConnected reports the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Publish sends a message and waits for the token up to publishTimeout.
// With QoS 0 the token completes immediately (fire-and-forget).
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe registers a handler and tracks the subscription so it survives
// reconnects.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, qos: qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(publishTimeout) {
		c.dropSubscription(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		c.dropSubscription(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

func (c *Client) dropSubscription(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// wrapHandler adds panic recovery and error logging around a handler.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil && c.log != nil {
				c.log.Errorw("mqtt_handler_panic", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil && c.log != nil {
			c.log.Warnw("mqtt_handler_error", "topic", msg.Topic(), "err", err)
		}
	}
}

// Close disconnects from the broker, allowing a short quiesce period for
// in-flight operations.
func (c *Client) Close() {
	if c.client == nil {
		return
	}
	c.client.Disconnect(disconnectQuiesce)
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()
}
