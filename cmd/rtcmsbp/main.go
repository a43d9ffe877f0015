// rtcmsbp is a demo ingress/egress binary for the translator package: it
// reads one wire format from stdin (or an optional serial port) and
// writes the translated frames to stdout, the way a base station's RTCM
// feed might be piped into an NTRIP uplink or a rover's SBP corrections
// client might be piped into a radio modem.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.bug.st/serial"

	"github.com/swift-nav/gnss-converters-go/config"
	"github.com/swift-nav/gnss-converters-go/sessionlog"
	"github.com/swift-nav/gnss-converters-go/translator"
)

const readBufferSize = 4096

func main() {
	app := &cli.App{
		Name:  "rtcmsbp",
		Usage: "translate a stream of RTCM3 or SBP messages to the other format",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON session configuration file",
			},
			&cli.StringFlag{
				Name:  "direction",
				Value: "rtcm2sbp",
				Usage: "rtcm2sbp or sbp2rtcm",
			},
			&cli.StringFlag{
				Name:  "serial",
				Usage: "serial device to read from instead of stdin, e.g. /dev/ttyACM0",
			},
			&cli.IntFlag{
				Name:  "baud",
				Value: 115200,
				Usage: "baud rate, only used with --serial",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "directory for a daily rotating event log; stderr if unset",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("rtcmsbp: %w", err)
		}
		cfg = *loaded
	}

	sessionID := uuid.New().String()
	logger := newSessionLogger(c.String("log-dir"), sessionID)
	logger.Printf("starting session %s, direction=%s", sessionID, c.String("direction"))

	input, closeInput, err := openInput(c)
	if err != nil {
		return fmt.Errorf("rtcmsbp: %w", err)
	}
	defer closeInput()

	onFrame := func(frame []byte) {
		if _, err := os.Stdout.Write(frame); err != nil {
			logger.Printf("write to stdout failed: %v", err)
		}
	}

	var session *translator.Session
	var ingest func([]byte)
	switch c.String("direction") {
	case "rtcm2sbp":
		session = translator.NewSession(cfg, logger, nil, nil, onFrame)
		ingest = session.IngestRTCM
	case "sbp2rtcm":
		session = translator.NewSession(cfg, logger, nil, onFrame, nil)
		ingest = session.IngestSBP
	default:
		return fmt.Errorf("rtcmsbp: unknown --direction %q, want rtcm2sbp or sbp2rtcm", c.String("direction"))
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := input.Read(buf)
		if n > 0 {
			ingest(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("rtcmsbp: read failed: %w", err)
		}
	}

	counters := session.Counters.Snapshot()
	logger.Printf("session %s ended: %+v", sessionID, counters)
	return nil
}

func newSessionLogger(logDir, sessionID string) *sessionlog.Logger {
	prefix := fmt.Sprintf("[%s] ", sessionID)
	if logDir == "" {
		return sessionlog.New(log.New(os.Stderr, prefix, log.LstdFlags))
	}
	return sessionlog.NewDailyFile(logDir, "rtcmsbp")
}

func openInput(c *cli.Context) (io.Reader, func(), error) {
	devicePath := c.String("serial")
	if devicePath == "" {
		return os.Stdin, func() {}, nil
	}

	mode := &serial.Mode{BaudRate: c.Int("baud")}
	port, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("opening serial port %s: %w", devicePath, err)
	}
	if err := port.SetReadTimeout(5 * time.Second); err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("setting read timeout on %s: %w", devicePath, err)
	}
	return port, func() { port.Close() }, nil
}
