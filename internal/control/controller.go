// Package control implements the synchronization core: every input event,
// local or remote, goes through one Controller that updates the level, drives
// the LEDs and republishes the result.
package control

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/light-bridge/internal/logic"
	"github.com/sweeney/light-bridge/internal/mqtt"
)

// Actuators is the LED bank as seen by the controller.
type Actuators interface {
	Apply(level logic.Level) (int, error)
}

// Recorder receives every transition. Failures are logged, never fatal.
type Recorder interface {
	Record(t logic.Transition) error
}

// Subscriber registers inbound handlers.
type Subscriber interface {
	Subscribe(ch mqtt.Channel, h mqtt.Handler) error
}

// Options configures a Controller.
type Options struct {
	Size       int
	Thresholds logic.Thresholds
	Recorder   Recorder         // optional
	Logger     *zerolog.Logger  // nil uses the global logger
	Now        func() time.Time // nil uses time.Now
}

// Controller owns the position state and the LED bank. It is not safe for
// concurrent use: the main loop and the handlers it dispatches from Poll are
// the only callers.
type Controller struct {
	pos        *logic.Position
	bank       Actuators
	pub        mqtt.Publisher
	thresholds logic.Thresholds
	rec        Recorder
	log        zerolog.Logger
	now        func() time.Time
	counts     logic.Counts
}

// New creates a Controller at LevelOff, enabled.
func New(bank Actuators, pub mqtt.Publisher, opts Options) *Controller {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		pos:        logic.NewPosition(opts.Size),
		bank:       bank,
		pub:        pub,
		thresholds: opts.Thresholds,
		rec:        opts.Recorder,
		log:        logger.With().Str("component", "control").Logger(),
		now:        now,
	}
}

// Level returns the current level.
func (c *Controller) Level() logic.Level {
	return c.pos.Current()
}

// Size returns the number of actuators.
func (c *Controller) Size() int {
	return c.pos.Size()
}

// Enabled reports whether the loop should keep running.
func (c *Controller) Enabled() bool {
	return c.pos.Enabled()
}

// Counts returns a copy of the transition counters.
func (c *Controller) Counts() logic.Counts {
	return c.counts
}

// Register subscribes the power and control handlers.
func (c *Controller) Register(s Subscriber) error {
	if err := s.Subscribe(mqtt.ChannelPower, c.HandlePower); err != nil {
		return err
	}
	return s.Subscribe(mqtt.ChannelControl, c.HandleControl)
}

// Announce tells observers the device is on.
func (c *Controller) Announce() error {
	return c.publish(mqtt.ChannelPower, mqtt.On)
}

// StepUp lights the next actuator.
func (c *Controller) StepUp(src logic.Source) logic.Transition {
	return c.Step(logic.DirUp, src)
}

// StepDown turns off the highest lit actuator.
func (c *Controller) StepDown(src logic.Source) logic.Transition {
	return c.Step(logic.DirDown, src)
}

// Step applies one transition. The level is updated first, then the LEDs are
// driven, then the change is published; a failed publish does not undo the
// local change.
func (c *Controller) Step(dir logic.Direction, src logic.Source) logic.Transition {
	from, to, kind := c.pos.Step(dir)
	t := logic.Transition{
		Timestamp: c.now(),
		Source:    src,
		Kind:      kind,
		From:      from,
		To:        to,
	}

	switch kind {
	case "":
		return t
	case logic.KindMaxReached:
		c.log.Info().Str("source", string(src)).Int("level", int(from)).Msg("max reached")
	case logic.KindMinReached:
		c.log.Info().Str("source", string(src)).Msg("min reached")
	case logic.KindStepUp:
		c.drive(to)
		c.publish(mqtt.LevelChannel(int(to)), mqtt.On)
	case logic.KindStepDown:
		c.drive(to)
		// The channel of the actuator that just went dark.
		c.publish(mqtt.LevelChannel(int(from)), mqtt.Off)
	}

	if t.Changed() {
		c.log.Info().Str("source", string(src)).Int("from", int(from)).Int("to", int(to)).Msg("level changed")
	}
	c.counts.Add(kind)
	c.record(t)
	return t
}

// HandleReading evaluates one normalized sensor sample against the thresholds.
// Readings in the dead zone leave everything untouched.
func (c *Controller) HandleReading(reading int) logic.Transition {
	dir := c.thresholds.Classify(reading)
	if dir == logic.DirNone {
		l := c.pos.Current()
		return logic.Transition{Timestamp: c.now(), Source: logic.SourceSensor, From: l, To: l}
	}
	return c.Step(dir, logic.SourceSensor)
}

// HandleControl maps a remote control code onto a step. Unknown codes and
// malformed payloads are logged and ignored.
func (c *Controller) HandleControl(msg mqtt.Message) {
	code, err := mqtt.ParseCode(msg.Payload)
	if err != nil {
		c.counts.Ignored++
		c.log.Warn().Err(err).Str("channel", string(msg.Channel)).Msg("ignoring control message")
		return
	}
	dir, ok := logic.DirectionForCode(code)
	if !ok {
		c.counts.Ignored++
		c.log.Info().Int("code", code).Msg("ignoring unrecognized control code")
		return
	}
	c.Step(dir, logic.SourceRemote)
}

// HandlePower enables or disables the system. Disabling only clears the flag;
// the main loop notices on its next check and runs Shutdown.
func (c *Controller) HandlePower(msg mqtt.Message) {
	on, err := mqtt.ParseFlag(msg.Payload)
	if err != nil {
		c.counts.Ignored++
		c.log.Warn().Err(err).Str("channel", string(msg.Channel)).Msg("ignoring power message")
		return
	}
	if on {
		if c.pos.Enable() {
			c.log.Info().Msg("power on")
			c.recordPower(logic.KindPowerOn, logic.SourceRemote)
		}
		return
	}
	c.Disable(logic.SourceRemote)
}

// Disable clears the enabled flag.
func (c *Controller) Disable(src logic.Source) {
	if !c.pos.Disable() {
		return
	}
	c.log.Info().Str("source", string(src)).Int("level", int(c.pos.Current())).Msg("power off")
	c.recordPower(logic.KindPowerOff, src)
}

// Shutdown publishes 0 on every level channel from 0 up to the current level,
// then 0 on the power channel, then turns the LEDs off locally. Publishing is
// best effort: every publish is attempted and the failures are joined.
func (c *Controller) Shutdown() error {
	last := c.pos.Current()
	var errs []error

	for i := 0; i <= int(last); i++ {
		if err := c.publish(mqtt.LevelChannel(i), mqtt.Off); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.publish(mqtt.ChannelPower, mqtt.Off); err != nil {
		errs = append(errs, err)
	}

	c.drive(c.pos.Set(logic.LevelOff))
	c.record(logic.Transition{
		Timestamp: c.now(),
		Source:    logic.SourceShutdown,
		Kind:      logic.KindShutdown,
		From:      last,
		To:        logic.LevelOff,
	})
	c.log.Info().Int("last_level", int(last)).Int("failed_publishes", len(errs)).Msg("shutdown burst sent")
	return errors.Join(errs...)
}

func (c *Controller) drive(level logic.Level) {
	n, err := c.bank.Apply(level)
	if err != nil {
		c.log.Error().Err(err).Int("level", int(level)).Msg("actuator write failed")
		return
	}
	c.log.Debug().Int("level", int(level)).Int("written", n).Msg("actuators applied")
}

func (c *Controller) publish(ch mqtt.Channel, payload []byte) error {
	if err := c.pub.Publish(ch, payload); err != nil {
		c.log.Warn().Err(err).Str("channel", string(ch)).Msg("publish failed")
		return err
	}
	return nil
}

func (c *Controller) recordPower(kind logic.Kind, src logic.Source) {
	l := c.pos.Current()
	c.record(logic.Transition{Timestamp: c.now(), Source: src, Kind: kind, From: l, To: l})
}

func (c *Controller) record(t logic.Transition) {
	if c.rec == nil {
		return
	}
	if err := c.rec.Record(t); err != nil {
		c.log.Warn().Err(err).Str("kind", string(t.Kind)).Msg("journal write failed")
	}
}
