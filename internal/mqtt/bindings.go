package mqtt

// Bindings maps logical channels to broker topics. Static for the process lifetime.
type Bindings struct {
	topics   map[Channel]string
	channels map[string]Channel
	levels   int
}

// FeedTopic returns the Adafruit IO topic for a user's feed.
func FeedTopic(username, feed string) string {
	return username + "/feeds/" + feed
}

// NewBindings binds the power, control and per-level channels to feeds owned
// by username. An empty status feed leaves the status channel unbound.
func NewBindings(username, power, control, status string, levels []string) Bindings {
	b := Bindings{
		topics:   make(map[Channel]string),
		channels: make(map[string]Channel),
		levels:   len(levels),
	}
	b.bind(ChannelPower, FeedTopic(username, power))
	b.bind(ChannelControl, FeedTopic(username, control))
	if status != "" {
		b.bind(ChannelStatus, FeedTopic(username, status))
	}
	for i, feed := range levels {
		b.bind(LevelChannel(i), FeedTopic(username, feed))
	}
	return b
}

func (b Bindings) bind(ch Channel, topic string) {
	b.topics[ch] = topic
	b.channels[topic] = ch
}

// Topic returns the topic bound to ch.
func (b Bindings) Topic(ch Channel) (string, bool) {
	t, ok := b.topics[ch]
	return t, ok
}

// Channel returns the logical channel bound to topic.
func (b Bindings) Channel(topic string) (Channel, bool) {
	ch, ok := b.channels[topic]
	return ch, ok
}

// Levels returns the number of bound level channels.
func (b Bindings) Levels() int {
	return b.levels
}
