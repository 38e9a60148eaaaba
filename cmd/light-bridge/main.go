// Command light-bridge keeps a joystick-driven LED bar in sync with an
// Adafruit IO light level over MQTT.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/light-bridge/internal/config"
	"github.com/sweeney/light-bridge/internal/control"
	"github.com/sweeney/light-bridge/internal/gpio"
	"github.com/sweeney/light-bridge/internal/ledger"
	"github.com/sweeney/light-bridge/internal/logic"
	"github.com/sweeney/light-bridge/internal/mqtt"
	"github.com/sweeney/light-bridge/internal/status"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	printState := flag.Bool("print-state", false, "Read the sensor once, print it and exit")
	history := flag.Int("history", 0, "Print the last N journal entries and exit")
	logLevel := flag.String("log-level", "", "Override the configured log level")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	setupLogging(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Colors)

	switch {
	case *history > 0:
		err = printHistory(cfg.Journal.Path, *history)
	case *printState:
		err = printSensor(cfg)
	default:
		err = run(cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(cfg *config.Config) error {
	if err := cfg.CheckCredentials(); err != nil {
		return err
	}

	outputs, err := gpio.NewRealOutputs(cfg.GPIO.Chip, cfg.GPIO.Pins)
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer outputs.Close()
	bank := gpio.NewBank(outputs)

	sensor, err := gpio.NewIIOSensor(cfg.Sensor.Path, cfg.Sensor.RawMax, cfg.Sensor.Invert)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensor.Close()

	var rec control.Recorder
	if cfg.Journal.Path != "" {
		journal, err := ledger.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
		rec = journal
		log.Info().Str("path", cfg.Journal.Path).Str("session", journal.Session()).Msg("journal open")
	}

	interval := cfg.Loop.Interval.Duration()
	heartbeat := cfg.Loop.Heartbeat.Duration()
	tracker := status.NewTracker(time.Now(), bank.Len(), status.Config{
		PollMs:      interval.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		High:        cfg.Sensor.High,
		Low:         cfg.Sensor.Low,
	})

	opts := cfg.MQTTOptions()
	opts.OnConnectionChange = tracker.SetMQTTConnected
	remote, err := mqtt.NewRealRemote(opts, cfg.Bindings(), log.Logger)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer remote.Close()

	ctrl := control.New(bank, remote, control.Options{
		Size:       bank.Len(),
		Thresholds: cfg.Thresholds(),
		Recorder:   rec,
	})
	if err := ctrl.Register(remote); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if err := announce(ctrl, bank, cfg.GPIO.SelfTest.Duration(), nil); err != nil {
		return err
	}

	publishStatus(remote, tracker.Snapshot(time.Now()), "STARTUP")

	log.Info().
		Dur("interval", interval).
		Dur("heartbeat", heartbeat).
		Int("levels", bank.Len()).
		Str("broker", cfg.MQTT.Broker).
		Msg("started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, bank, sensor, remote, remote, tracker, heartbeat, time.Now, ticker.C, sigCh)
}

// announce publishes power=1 and then flashes every LED for hold, so the
// self-test is only seen once the device is online. A zero hold skips it.
func announce(ctrl *control.Controller, bank *gpio.Bank, hold time.Duration, sleep func(time.Duration)) error {
	if err := ctrl.Announce(); err != nil {
		log.Warn().Err(err).Msg("failed to announce power on")
	}
	if hold <= 0 {
		return nil
	}
	log.Info().Dur("hold", hold).Msg("led self-test")
	return bank.SelfTest(hold, sleep)
}

// runLoop services remote messages and the sensor once per tick until the
// controller is disabled, then sends the shutdown burst and closes remote.
// Remote messages queued before a tick are handled before that tick's sample.
func runLoop(ctrl *control.Controller, bank *gpio.Bank, sensor gpio.Sensor, remote mqtt.Remote, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for ctrl.Enabled() {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			ctrl.Disable(logic.SourceSignal)

		case <-tick:
			t := now()
			if n := remote.Poll(); n > 0 {
				log.Debug().Int("messages", n).Msg("remote messages handled")
			}
			if !ctrl.Enabled() {
				continue
			}

			reading, err := sensor.Read()
			if err != nil {
				log.Warn().Err(err).Msg("sensor read error")
				continue
			}
			ctrl.HandleReading(reading)
			log.Debug().Int("level", int(ctrl.Level())).Int("reading", reading).Msg("tick")

			if tracker == nil {
				continue
			}
			tracker.SetReading(reading)
			tracker.Update(ctrl.Level(), ctrl.Enabled(), bank.LitCount(), ctrl.Counts())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			if tracker.HeartbeatDue(t, heartbeat) {
				snap := tracker.Snapshot(t)
				var dropped int
				if d, ok := remote.(interface{ Dropped() int }); ok {
					dropped = d.Dropped()
				}
				log.Info().
					Dur("uptime", snap.Uptime()).
					Int("level", int(snap.Level)).
					Int("step_up", snap.Counts.StepUp).
					Int("step_down", snap.Counts.StepDown).
					Int("ignored", snap.Counts.Ignored).
					Int("inbox_dropped", dropped).
					Bool("mqtt", snap.MQTTConnected).
					Msg("heartbeat")
				publishStatus(remote, snap, "HEARTBEAT")
			}
		}
	}

	err := ctrl.Shutdown()
	if cerr := remote.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("close mqtt")
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}

// publishStatus sends a status event if the status channel is bound.
func publishStatus(pub mqtt.Publisher, snap status.Snapshot, event string) {
	err := pub.Publish(mqtt.ChannelStatus, status.FormatStatusEvent(snap, event))
	switch {
	case err == nil:
		log.Debug().Str("event", event).Msg("published status")
	case errors.Is(err, mqtt.ErrUnboundChannel):
	default:
		log.Warn().Err(err).Str("event", event).Msg("status publish failed")
	}
}

func printSensor(cfg *config.Config) error {
	sensor, err := gpio.NewIIOSensor(cfg.Sensor.Path, cfg.Sensor.RawMax, cfg.Sensor.Invert)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensor.Close()

	reading, err := sensor.Read()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Printf("reading: %d, direction: %s\n", reading, cfg.Thresholds().Classify(reading))

	now := time.Now()
	tracker := status.NewTracker(now, len(cfg.GPIO.Pins), status.Config{
		PollMs:      cfg.Loop.Interval.Duration().Milliseconds(),
		HeartbeatMs: cfg.Loop.Heartbeat.Duration().Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		High:        cfg.Sensor.High,
		Low:         cfg.Sensor.Low,
	})
	tracker.SetReading(reading)
	fmt.Println(string(status.FormatJSON(tracker.Snapshot(now))))
	return nil
}

func printHistory(path string, n int) error {
	if path == "" {
		return errors.New("no journal configured")
	}
	journal, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.Recent(n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s  %-11s  %2d -> %2d  %s\n",
			e.Timestamp.Local().Format(time.RFC3339), e.Source, e.Kind, e.From, e.To, e.Session[:8])
	}
	return nil
}
