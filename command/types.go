// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package command implements the Meitrack command variant model: per
// command-type field schemas, dispatch, and the derived accessors used by
// higher layers to read location reports, file transfers, and OTA state
// out of a parsed frame payload.
package command

// Type is the three-byte ASCII command-type code carried in a frame
// payload, e.g. "A10", "AAA", "D00", "FC1".
type Type string

// The catalog of command types known to the device/headend protocol.
// Only a subset (marked "modeled" below) have a field schema in this
// package; the rest resolve to an untyped Command carrying the raw
// payload bytes, per F-Inv-3.
const (
	A10 Type = "A10" // modeled: real-time location query
	A11 Type = "A11" // modeled: set heartbeat reporting interval (minutes)
	A12 Type = "A12" // modeled: tracking by time interval (deciseconds)
	A13 Type = "A13" // modeled: set cornering report angle (degrees)
	A14 Type = "A14" // modeled: tracking by distance (meters)
	A15 Type = "A15" // unmodeled: set parking scheduled tracking
	A16 Type = "A16" // unmodeled: enable parking scheduled tracking
	A21 Type = "A21" // unmodeled: set GPRS parameters
	A22 Type = "A22" // unmodeled: set DNS server address
	A23 Type = "A23" // unmodeled: set standby GPRS server
	A70 Type = "A70" // unmodeled: read authorized phone numbers
	A71 Type = "A71" // unmodeled: set authorized phone numbers
	A73 Type = "A73" // unmodeled: set smart sleep mode

	AAA Type = "AAA" // modeled: automatic location/event report (device->server only)
	AFF Type = "AFF" // unmodeled: delete a buffered GPRS event

	B05 Type = "B05" // unmodeled: set a geo-fence
	B06 Type = "B06" // unmodeled: delete a geo-fence
	B07 Type = "B07" // unmodeled: set speeding alarm
	B08 Type = "B08" // unmodeled: set towing alarm
	B21 Type = "B21" // unmodeled: set anti-theft function
	B34 Type = "B34" // unmodeled: set log interval
	B35 Type = "B35" // unmodeled: set SMS time zone
	B36 Type = "B36" // unmodeled: set GPRS time zone
	B60 Type = "B60" // unmodeled: check engine/tracker running status
	B99 Type = "B99" // unmodeled: set event authorization

	C01 Type = "C01" // modeled: output pin control
	C02 Type = "C02" // unmodeled: notify tracker of an outbound SMS
	C03 Type = "C03" // unmodeled: set GPRS event transmission mode
	C08 Type = "C08" // unmodeled: set I/O port status
	C40 Type = "C40" // unmodeled: register a temperature sensor
	C41 Type = "C41" // unmodeled: delete a registered temperature sensor
	C42 Type = "C42" // unmodeled: read temperature sensor SN/number
	C43 Type = "C43" // unmodeled: set temperature alarm thresholds
	C44 Type = "C44" // unmodeled: read temperature sensor parameters
	C46 Type = "C46" // unmodeled: check temperature sensor parameters
	C91 Type = "C91" // modeled: peripheral I/O device parameters

	D00 Type = "D00" // modeled: file chunk transfer
	D01 Type = "D01" // modeled: file list
	D02 Type = "D02" // modeled: delete remote files (pipe-separated name list)
	D10 Type = "D10" // unmodeled: authorize an iButton key
	D11 Type = "D11" // unmodeled: authorize iButton keys in batch
	D12 Type = "D12" // unmodeled: check iButton authorization
	D13 Type = "D13" // unmodeled: read an authorized iButton key
	D14 Type = "D14" // unmodeled: delete an authorized iButton key
	D15 Type = "D15" // unmodeled: delete authorized iButton keys in batch
	D16 Type = "D16" // unmodeled: checksum of the authorized iButton database
	D34 Type = "D34" // unmodeled: set idling time
	D71 Type = "D71" // unmodeled: set GPS data filtering
	D72 Type = "D72" // unmodeled: set output triggering
	D73 Type = "D73" // unmodeled: allocate GPRS/GPS log storage

	E91 Type = "E91" // modeled: read firmware version and serial number

	FC0 Type = "FC0" // modeled: OTA auth/packet-size negotiation
	FC1 Type = "FC1" // modeled: OTA chunk transfer (binary-safe)
	FC2 Type = "FC2" // modeled: OTA checksum verification
	FC3 Type = "FC3" // modeled: OTA start update
	FC4 Type = "FC4" // modeled: OTA cancel update
	FC5 Type = "FC5" // modeled: OTA device code check
	FC6 Type = "FC6" // modeled: OTA firmware file-name check
	FC7 Type = "FC7" // modeled: OTA set update server host

	F01 Type = "F01" // unmodeled: restart GSM module
	F02 Type = "F02" // unmodeled: restart GPS module
	F08 Type = "F08" // unmodeled: set mileage and run time
	F09 Type = "F09" // unmodeled: delete SMS/GPRS cache data
	F11 Type = "F11" // unmodeled: restore initial settings
)

// names gives a human-readable description for every cataloged type,
// modeled or not; purely informational (diagnostics, CLI listing).
var names = map[Type]string{
	A10: "Real-Time Location Query",
	A11: "Setting a Heartbeat Packet Reporting Interval",
	A12: "Tracking by Time Interval",
	A13: "Setting the Cornering Report Function",
	A14: "Tracking by Distance",
	A15: "Setting the Parking Scheduled Tracking Function",
	A16: "Enabling the Parking Scheduled Tracking Function",
	A21: "Setting GPRS Parameters",
	A22: "Setting the DNS Server IP Address",
	A23: "Setting the Standby GPRS Server",
	A70: "Reading All Authorized Phone Numbers",
	A71: "Setting Authorized Phone Numbers",
	A73: "Setting the Smart Sleep Mode",
	AAA: "Automatic Event Report",
	AFF: "Deleting a GPRS Event in the Buffer",
	B05: "Setting a Geo-Fence",
	B06: "Deleting a Geo-Fence",
	B07: "Setting the Speeding Alarm Function",
	B08: "Setting the Towing Alarm Function",
	B21: "Setting the Anti-Theft Function",
	B34: "Setting a Log Interval",
	B35: "Setting the SMS Time Zone",
	B36: "Setting the GPRS Time Zone",
	B60: "Checking the Engine to Determine Tracker Running Status",
	B99: "Setting Event Authorization",
	C01: "Controlling Output Status",
	C02: "Notifying the Tracker of Sending an SMS",
	C03: "Setting a GPRS Event Transmission Mode",
	C08: "Setting I/O Port Status",
	C40: "Registering a Temperature Sensor Number",
	C41: "Deleting a Registered Temperature Sensor",
	C42: "Reading the Temperature Sensor SN and Number",
	C43: "Setting a Temperature Alarm Value and Logical Name",
	C44: "Reading Temperature Sensor Parameters",
	C46: "Checking Temperature Sensor Parameters",
	C91: "Peripheral I/O Device Parameters",
	D00: "File Download Command",
	D01: "File List Command",
	D02: "Delete Remote Files",
	D10: "Authorizing an iButton Key",
	D11: "Authorizing iButton Keys in Batches",
	D12: "Checking iButton Authorization",
	D13: "Reading an Authorized iButton Key",
	D14: "Deleting an Authorized iButton Key",
	D15: "Deleting Authorized iButton Keys in Batches",
	D16: "Checking the Checksum of the Authorized iButton Database",
	D34: "Setting Idling Time",
	D71: "Setting GPS Data Filtering",
	D72: "Setting Output Triggering",
	D73: "Allocating GPRS Cache and GPS Log Storage Space",
	E91: "Reading Device's Firmware Version and Serial Number",
	FC0: "Auth OTA Update",
	FC1: "Send OTA Data",
	FC2: "Obtain OTA Checksum",
	FC3: "Start OTA Update",
	FC4: "Cancel OTA Update",
	FC5: "Check Device Code",
	FC6: "Check Firmware Version",
	FC7: "Set OTA Server",
	F01: "Restarting the GSM Module",
	F02: "Restarting the GPS Module",
	F08: "Setting the Mileage and Run Time",
	F09: "Deleting SMS/GPRS Cache Data",
	F11: "Restoring Initial Settings",
}

// Name returns the descriptive name registered for a command type, and
// whether the type is cataloged at all (unknown types return "", false).
func Name(t Type) (string, bool) {
	n, ok := names[t]
	return n, ok
}
