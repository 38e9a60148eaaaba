package mqtt

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBroker is the Adafruit IO MQTT endpoint.
const DefaultBroker = "ssl://io.adafruit.com:8883"

// Options configures a RealRemote.
type Options struct {
	Broker         string
	ClientID       string // empty generates light-bridge-<random>
	Username       string
	Password       string
	QoS            byte
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	InboxSize      int
	RateLimit      float64 // publishes per second, 0 disables
	RateBurst      int

	// OnConnectionChange, if set, is called from paho's goroutines whenever
	// the connection comes up or drops.
	OnConnectionChange func(connected bool)
}

func (o *Options) setDefaults() {
	if o.Broker == "" {
		o.Broker = DefaultBroker
	}
	if o.ClientID == "" {
		o.ClientID = "light-bridge-" + uuid.NewString()[:8]
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = 30 * time.Second
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = 2 * time.Second
	}
	if o.InboxSize <= 0 {
		o.InboxSize = DefaultInboxSize
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 1
	}
}

// RealRemote talks to an actual MQTT broker.
type RealRemote struct {
	client   paho.Client
	bindings Bindings
	opts     Options
	inbox    *inbox
	limiter  *rate.Limiter
	log      zerolog.Logger

	mu     sync.Mutex
	topics []string // subscribed topics, replayed on reconnect

	closeOnce sync.Once
}

// NewRealRemote connects to the broker. The power topic carries the Last Will,
// so observers see the device switch off if the connection drops uncleanly.
func NewRealRemote(opts Options, bindings Bindings, logger zerolog.Logger) (*RealRemote, error) {
	opts.setDefaults()

	r := &RealRemote{
		bindings: bindings,
		opts:     opts,
		inbox:    newInbox(opts.InboxSize),
		log:      logger.With().Str("component", "mqtt").Logger(),
	}
	if opts.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(opts.KeepAlive).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(r.onConnect).
		SetConnectionLostHandler(r.onConnectionLost)

	if strings.HasPrefix(opts.Broker, "ssl://") || strings.HasPrefix(opts.Broker, "tls://") || strings.HasPrefix(opts.Broker, "mqtts://") {
		po.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	if topic, ok := bindings.Topic(ChannelPower); ok {
		po.SetWill(topic, string(Off), opts.QoS, false)
	}

	r.client = paho.NewClient(po)
	token := r.client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		r.client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: %w", opts.Broker, ErrNotConnected)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	r.log.Info().Str("broker", opts.Broker).Str("client_id", opts.ClientID).Msg("connected")
	return r, nil
}

func (r *RealRemote) onConnect(c paho.Client) {
	r.reportConnection(true)

	r.mu.Lock()
	topics := append([]string(nil), r.topics...)
	r.mu.Unlock()

	for _, topic := range topics {
		r.subscribeTopic(topic)
	}
}

func (r *RealRemote) onConnectionLost(_ paho.Client, err error) {
	r.log.Warn().Err(err).Msg("connection lost")
	r.reportConnection(false)
}

func (r *RealRemote) reportConnection(connected bool) {
	if r.opts.OnConnectionChange != nil {
		r.opts.OnConnectionChange(connected)
	}
}

// onMessage runs on paho's goroutine; it only enqueues.
func (r *RealRemote) onMessage(_ paho.Client, m paho.Message) {
	ch, ok := r.bindings.Channel(m.Topic())
	if !ok {
		r.log.Debug().Str("topic", m.Topic()).Msg("message on unbound topic")
		return
	}
	payload := append([]byte(nil), m.Payload()...)
	r.inbox.push(Message{Channel: ch, Topic: m.Topic(), Payload: payload})
}

func (r *RealRemote) subscribeTopic(topic string) {
	token := r.client.Subscribe(topic, r.opts.QoS, r.onMessage)
	if !token.WaitTimeout(r.opts.PublishTimeout) {
		r.log.Warn().Str("topic", topic).Msg("subscribe timeout")
		return
	}
	if err := token.Error(); err != nil {
		r.log.Warn().Err(err).Str("topic", topic).Msg("subscribe failed")
		return
	}
	r.log.Info().Str("topic", topic).Msg("listening for changes")
}

// Subscribe registers h for ch and subscribes to its topic. The subscription
// is renewed automatically after a reconnect.
func (r *RealRemote) Subscribe(ch Channel, h Handler) error {
	topic, ok := r.bindings.Topic(ch)
	if !ok {
		return fmt.Errorf("subscribe %s: %w", ch, ErrUnboundChannel)
	}
	r.inbox.handle(ch, h)

	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.mu.Unlock()

	if r.client.IsConnectionOpen() {
		r.subscribeTopic(topic)
	}
	return nil
}

// Poll dispatches buffered inbound messages on the caller's goroutine.
func (r *RealRemote) Poll() int {
	return r.inbox.dispatch()
}

// Publish sends payload on ch. QoS from Options, not retained.
func (r *RealRemote) Publish(ch Channel, payload []byte) error {
	topic, ok := r.bindings.Topic(ch)
	if !ok {
		return fmt.Errorf("publish %s: %w", ch, ErrUnboundChannel)
	}
	if !r.client.IsConnectionOpen() {
		return fmt.Errorf("publish %s: %w", ch, ErrNotConnected)
	}
	if r.limiter != nil && !r.limiter.Allow() {
		return fmt.Errorf("publish %s: %w", ch, ErrRateLimited)
	}

	token := r.client.Publish(topic, r.opts.QoS, false, payload)
	if !token.WaitTimeout(r.opts.PublishTimeout) {
		return fmt.Errorf("publish %s: timeout", ch)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", ch, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is open.
func (r *RealRemote) IsConnected() bool {
	return r.client.IsConnectionOpen()
}

// Dropped returns the number of inbound messages lost to inbox overflow.
func (r *RealRemote) Dropped() int {
	return r.inbox.dropped()
}

// Close disconnects from the broker. Safe to call more than once.
func (r *RealRemote) Close() error {
	r.closeOnce.Do(func() {
		r.client.Disconnect(1000) // 1 second timeout
		r.log.Info().Msg("disconnected")
	})
	return nil
}
