// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package eventbridge publishes decoded AAA location events to an MQTT
// broker, one topic per device, so downstream consumers (dashboards,
// alerting) never have to couple to the TCP listener (§10.3).
package eventbridge

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/scattym/go-meitrack/clog"
	"github.com/scattym/go-meitrack/command"
)

// TopicPrefix is the MQTT topic namespace events are published under:
// "meitrack/<imei>/event".
const TopicPrefix = "meitrack"

// QoS is the publish quality of service: at-least-once delivery.
const QoS = 1

// Event is the JSON payload published for one decoded AAA location
// report.
type Event struct {
	EventCode int       `json:"event_code"`
	EventName string    `json:"event_name"`
	Lat       string    `json:"lat"`
	Lon       string    `json:"lon"`
	DateTime  time.Time `json:"date_time"`
}

// Bridge publishes Events to an MQTT broker.
type Bridge struct {
	client mqtt.Client
	logger clog.LogProvider
}

// Config holds the MQTT connection parameters for a Bridge.
type Config struct {
	BrokerURL string
	ClientID  string
}

// New connects to the broker described by cfg and returns a ready-to-use
// Bridge. logger may be nil, in which case publish failures are returned
// to the caller without being logged.
func New(cfg Config, logger clog.LogProvider) (*Bridge, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Bridge{client: client, logger: logger}, nil
}

// Topic returns the publish topic for a device.
func Topic(imei string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefix, imei)
}

// PublishEvent JSON-encodes ev and publishes it to imei's topic.
func (b *Bridge) PublishEvent(imei string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := b.client.Publish(Topic(imei), QoS, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		if b.logger != nil {
			b.logger.Error("eventbridge: publish to %s failed: %v", Topic(imei), err)
		}
		return err
	}
	return nil
}

// EventFromCommand builds an Event from a parsed AAA command. ok is
// false if cmd does not carry the fields an AAA event needs.
func EventFromCommand(cmd *command.Command) (ev Event, ok bool) {
	if cmd.Type != command.AAA || !cmd.Typed {
		return Event{}, false
	}
	code, codeOK := cmd.EventCode()
	name, _ := cmd.GetEventName()
	lat, latOK := cmd.Get("latitude")
	lon, lonOK := cmd.Get("longitude")
	dt, dtOK := cmd.GetDateTime("date_time")
	if !codeOK || !latOK || !lonOK || !dtOK {
		return Event{}, false
	}
	return Event{
		EventCode: code,
		EventName: name,
		Lat:       string(lat),
		Lon:       string(lon),
		DateTime:  dt,
	}, true
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}
