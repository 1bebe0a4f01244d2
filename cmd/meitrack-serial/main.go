// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Command meitrack-serial is a bench bridge: it attaches to a device over
// a direct USB-serial line and relays its byte stream onto a loopback TCP
// connection to meitrackd, as if the device had dialed in over the
// network (§10.6). It decodes the forwarded stream through the same
// frame.Consume scanner purely to log what crossed the wire; a decode
// error never interrupts the forward.
package main

import (
	"flag"
	"io"
	"log"
	"net"
	"time"

	"github.com/tarm/serial"

	"github.com/scattym/go-meitrack/frame"
	"github.com/scattym/go-meitrack/wire"
)

var (
	portName   = flag.String("port", "/dev/ttyUSB0", "serial port the device is attached to")
	baudRate   = flag.Int("baud", 9600, "serial baud rate")
	daemonAddr = flag.String("daemon", "127.0.0.1:8800", "meitrackd TCP address to bridge onto")
)

func main() {
	flag.Parse()

	port, err := serial.OpenPort(&serial.Config{
		Name:        *portName,
		Baud:        *baudRate,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("meitrack-serial: opening %s: %v", *portName, err)
	}
	defer port.Close()

	conn, err := net.Dial("tcp", *daemonAddr)
	if err != nil {
		log.Fatalf("meitrack-serial: dialing %s: %v", *daemonAddr, err)
	}
	defer conn.Close()

	log.Printf("meitrack-serial: bridging %s <-> %s", *portName, *daemonAddr)

	done := make(chan error, 2)
	go func() { done <- forwardDeviceToDaemon(port, conn) }()
	go func() {
		_, err := io.Copy(port, conn)
		done <- err
	}()

	if err := <-done; err != nil && err != io.EOF {
		log.Printf("meitrack-serial: bridge stopped: %v", err)
	}
}

// forwardDeviceToDaemon copies every byte read from the device straight
// onto conn, logging each frame the same bytes happen to decode into.
func forwardDeviceToDaemon(port io.Reader, conn io.Writer) error {
	var decodeBuf []byte
	buf := make([]byte, 4096)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := conn.Write(chunk); werr != nil {
				return werr
			}

			decodeBuf = append(decodeBuf, chunk...)
			frames, _, leftover, decErr := frame.Consume(wire.ClientToServer, decodeBuf, false)
			decodeBuf = leftover
			for _, f := range frames {
				log.Printf("meitrack-serial: imei=%s %s %s", f.IMEI, f.Command.Type, f.Command.Direction)
			}
			if decErr != nil {
				log.Printf("meitrack-serial: frame decode: %v", decErr)
			}
		}
		if err != nil {
			return err
		}
	}
}
