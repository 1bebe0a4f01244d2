package command

// Schema declares the ordered field names a command payload splits into
// for one direction of one command type. Field 0 is always "command":
// the wire payload handed to Parse still carries the 3-byte command_type
// text glued onto its front (the frame codec reads it off the front to
// select a schema, but does not strip it — §3, §6 scenario frames).
// Bounded marks a schema whose last field may itself contain commas
// (§4.3): such fields are split into at most len(Fields) pieces so the
// tail absorbs any internal commas intact, and the field-count check
// never triggers. Unbounded schemas split on every comma and reject a
// payload carrying more pieces than Fields declares (*ParseError/FieldCount*).
type Schema struct {
	Fields  []string
	Bounded bool
}

// split returns the comma cut count to pass to bytes.SplitN: len(Fields)
// parts for a bounded schema (-1, i.e. every comma, for unbounded).
func (s Schema) split() int {
	if !s.Bounded {
		return -1
	}
	if len(s.Fields) == 0 {
		return 1
	}
	return len(s.Fields)
}

// pair holds the two directions of a fixed (non-AAA) command variant.
type pair struct {
	Request  Schema
	Response Schema
}

// schemas holds the fixed (non-AAA) command variants. AAA's schema
// depends on the event code and is resolved by aaaSchema instead.
var schemas = map[Type]pair{
	A10: {
		// Bare request: the only field is the command text itself; the
		// device answers with an AAA location report, not an A10 reply.
		Request: Schema{Fields: []string{"command"}},
	},
	A11: {
		Request:  Schema{Fields: []string{"command", "value"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	A12: {
		Request:  Schema{Fields: []string{"command", "value"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	A13: {
		Request:  Schema{Fields: []string{"command", "angle"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	A14: {
		Request:  Schema{Fields: []string{"command", "value"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	C01: {
		Request:  Schema{Fields: []string{"command", "speed", "pin_bitmap"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	C91: {
		Request:  Schema{Fields: []string{"command", "model", "device1", "device2", "device3", "device4", "device5"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	D00: {
		Request: Schema{Fields: []string{"command", "file_name", "data_packet_start_number"}},
		Response: Schema{
			Fields:  []string{"command", "file_name", "number_of_data_packets", "data_packet_number", "file_bytes"},
			Bounded: true,
		},
	},
	D01: {
		Request:  Schema{Fields: []string{"command", "data_packet_start_number"}},
		Response: Schema{Fields: []string{"command", "number_of_data_packets", "data_packet_number", "file_list"}},
	},
	D02: {
		// file_names is a '|'-separated list; bounding leaves it whole
		// regardless of any comma it might enclose.
		Request:  Schema{Fields: []string{"command", "file_names"}, Bounded: true},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	E91: {
		Request:  Schema{Fields: []string{"command"}},
		Response: Schema{Fields: []string{"command", "firmware_version", "serial_number"}},
	},
	FC0: {
		Request:  Schema{Fields: []string{"command", "action"}},
		Response: Schema{Fields: []string{"command", "device_code", "response", "packet_size", "current_firmware", "ota_file_name"}},
	},
	FC1: {
		// payload carries the raw 4-byte offset + 2-byte length + chunk
		// bytes; it must never be split on an internal comma or '*'.
		Request:  Schema{Fields: []string{"command", "payload"}, Bounded: true},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	FC2: {
		Request:  Schema{Fields: []string{"command", "index_length"}, Bounded: true},
		Response: Schema{Fields: []string{"command", "ota_checksum"}, Bounded: true},
	},
	FC3: {
		Request:  Schema{Fields: []string{"command"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	FC4: {
		Request:  Schema{Fields: []string{"command"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	FC5: {
		Request:  Schema{Fields: []string{"command"}},
		Response: Schema{Fields: []string{"command", "device_code"}, Bounded: true},
	},
	FC6: {
		Request:  Schema{Fields: []string{"command", "file_name"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
	FC7: {
		Request:  Schema{Fields: []string{"command", "ip_address", "port"}},
		Response: Schema{Fields: []string{"command", "response"}},
	},
}

// AAA location-event field layouts, selected by the event code at index 1
// (§3, §4.3.1); index 0 is always "command". All four variants plus the
// default share index 0 and 1.
var (
	aaaDefault = []string{
		"command", "event_code", "latitude", "longitude", "date_time", "pos_status", "num_sats",
		"gsm_signal_strength", "speed", "direction", "horizontal_accuracy", "altitude", "mileage",
		"run_time", "base_station_info", "io_port_status", "analog_input_value", "assisted_event_info",
		"customized_data", "protocol_version", "fuel_percentage",
		"temp_sensors", "max_acceleration_value", "max_deceleration_value",
		"unknown_1", "unknown_2", "unknown_3", "unknown_4", "unknown_5",
	}

	aaaAssistedTemp = []string{
		"command", "event_code", "latitude", "longitude", "date_time", "pos_status", "num_sats",
		"gsm_signal_strength", "speed", "direction", "horizontal_accuracy", "altitude", "mileage",
		"run_time", "base_station_info", "io_port_status", "analog_input_value", "assisted_event_info",
		"temperature_sensor_number", "customized_data", "protocol_version", "fuel_percentage",
		"temp_sensors", "max_acceleration_value", "max_deceleration_value",
		"unknown_1", "unknown_2", "unknown_3", "unknown_4", "unknown_5",
	}

	aaaRFID = []string{
		"command", "event_code", "latitude", "longitude", "date_time", "pos_status", "num_sats",
		"gsm_signal_strength", "speed", "direction", "horizontal_accuracy", "altitude", "mileage",
		"run_time", "base_station_info", "io_port_status", "analog_input_value",
		"rfid",
		"customized_data", "protocol_version", "fuel_percentage",
		"temp_sensors", "max_acceleration_value", "max_deceleration_value",
		"unknown_1", "unknown_2", "unknown_3", "unknown_4", "unknown_5",
	}

	aaaFileName = []string{
		"command", "event_code", "latitude", "longitude", "date_time", "pos_status", "num_sats",
		"gsm_signal_strength", "speed", "direction", "horizontal_accuracy", "altitude", "mileage",
		"run_time", "base_station_info", "io_port_status", "analog_input_value",
		"file_name",
		"customized_data", "protocol_version", "fuel_percentage",
		"temp_sensors", "max_acceleration_value", "max_deceleration_value",
		"unknown_1", "unknown_2", "unknown_3", "unknown_4", "unknown_5",
	}

	// aaaTaxiMeter is the default layout with its final opaque field
	// reinterpreted as a '|'-delimited taxi-meter trailer (§9 open
	// question: event 109).
	aaaTaxiMeter = []string{
		"command", "event_code", "latitude", "longitude", "date_time", "pos_status", "num_sats",
		"gsm_signal_strength", "speed", "direction", "horizontal_accuracy", "altitude", "mileage",
		"run_time", "base_station_info", "io_port_status", "analog_input_value", "assisted_event_info",
		"customized_data", "protocol_version", "fuel_percentage",
		"temp_sensors", "max_acceleration_value", "max_deceleration_value",
		"unknown_1", "unknown_2", "unknown_3", "unknown_4", "taxi_meter_data",
	}
)

// aaaSchema selects the AAA field layout for an event code (the second
// comma-separated field of an AAA payload, after "command").
func aaaSchema(eventCode []byte) []string {
	switch string(eventCode) {
	case "50", "51":
		return aaaAssistedTemp
	case "37":
		return aaaRFID
	case "39":
		return aaaFileName
	case "109":
		return aaaTaxiMeter
	default:
		return aaaDefault
	}
}
