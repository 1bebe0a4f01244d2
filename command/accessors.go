package command

import (
	"bytes"
	"strconv"
)

// GetAnalogInputValue reads the 1-indexed analog input from the
// '|'-separated analog_input_value field; each entry is a hex value
// divided by 100 (§4.3).
func (c *Command) GetAnalogInputValue(inputNumber int) (float64, bool) {
	raw, ok := c.Get("analog_input_value")
	if !ok || inputNumber < 1 {
		return 0, false
	}
	parts := bytes.Split(raw, []byte("|"))
	if inputNumber > len(parts) {
		return 0, false
	}
	v, err := strconv.ParseInt(string(parts[inputNumber-1]), 16, 64)
	if err != nil {
		return 0, false
	}
	return float64(v) / 100, true
}

// GetBatteryVoltage reports the internal battery voltage, the analog
// input at index 4.
func (c *Command) GetBatteryVoltage() (float64, bool) {
	return c.GetAnalogInputValue(4)
}

// GetBatteryLevel derives an integer battery percentage from voltage,
// clamped to [0, 100], assuming a 4.2V full-charge reference.
func (c *Command) GetBatteryLevel() (int, bool) {
	voltage, ok := c.GetBatteryVoltage()
	if !ok {
		return 0, false
	}
	pct := int(voltage / 4.2 * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// BaseStationInfo is the decoded base-station descriptor carried in the
// io_port_status-adjacent base_station_info field.
type BaseStationInfo struct {
	MCC                string
	MNC                string
	LAC                int64
	CI                 int64
	GSMSignalStrength  string
}

// GetBaseStationInfo splits the '|'-separated base_station_info field
// into (MCC, MNC, LAC, CI), re-emitting LAC/CI as decimal (§4.3).
func (c *Command) GetBaseStationInfo() (BaseStationInfo, bool) {
	raw, ok := c.Get("base_station_info")
	if !ok {
		return BaseStationInfo{}, false
	}
	parts := bytes.Split(raw, []byte("|"))
	if len(parts) != 4 {
		return BaseStationInfo{}, false
	}
	lac, err := strconv.ParseInt(string(parts[2]), 16, 64)
	if err != nil {
		return BaseStationInfo{}, false
	}
	ci, err := strconv.ParseInt(string(parts[3]), 16, 64)
	if err != nil {
		return BaseStationInfo{}, false
	}
	gsm, _ := c.Get("gsm_signal_strength")
	return BaseStationInfo{
		MCC:               string(parts[0]),
		MNC:               string(parts[1]),
		LAC:               lac,
		CI:                ci,
		GSMSignalStrength: string(gsm),
	}, true
}

// DigitalPin reports whether one bit of the io_port_status bitmap is set.
// The hex bytes are interpreted little-endian by byte; pin index is
// byte_index*8+bit.
func (c *Command) DigitalPin(pin int) (bool, bool) {
	raw, ok := c.Get("io_port_status")
	if !ok || pin < 0 {
		return false, false
	}
	byteIdx := pin / 8
	bitIdx := uint(pin % 8)
	// The wire field is ASCII hex, two characters per byte.
	hexStart := byteIdx * 2
	if hexStart+2 > len(raw) {
		return false, false
	}
	v, err := strconv.ParseUint(string(raw[hexStart:hexStart+2]), 16, 8)
	if err != nil {
		return false, false
	}
	return (v>>bitIdx)&1 == 1, true
}

// GetFileData returns the D00 response's (file_name, total_packets,
// packet_number, file_bytes) tuple.
func (c *Command) GetFileData() (fileName []byte, total int, index int, data []byte, ok bool) {
	data, hasData := c.Get("file_bytes")
	if !hasData {
		return nil, 0, 0, nil, false
	}
	fileName, _ = c.Get("file_name")
	totalB, _ := c.Get("number_of_data_packets")
	idxB, _ := c.Get("data_packet_number")
	total, err1 := strconv.Atoi(string(totalB))
	index, err2 := strconv.Atoi(string(idxB))
	if err1 != nil || err2 != nil {
		return nil, 0, 0, nil, false
	}
	return fileName, total, index, data, true
}

// GetFileList returns the D01 response's (total_packets, packet_index,
// fragment_string) tuple.
func (c *Command) GetFileList() (total int, index int, fragment []byte, ok bool) {
	fragment, has := c.Get("file_list")
	if !has {
		return 0, 0, nil, false
	}
	totalB, _ := c.Get("number_of_data_packets")
	idxB, _ := c.Get("data_packet_number")
	total, err1 := strconv.Atoi(string(totalB))
	index, err2 := strconv.Atoi(string(idxB))
	if err1 != nil || err2 != nil {
		return 0, 0, nil, false
	}
	return total, index, fragment, true
}

// GetEventName resolves the AAA event code to its registered name.
func (c *Command) GetEventName() (string, bool) {
	code, ok := c.EventCode()
	if !ok {
		return "", false
	}
	return EventName(code)
}

// TaxiMeterData is the decoded trailer carried by AAA event 109 (§3,
// §9 event-109 resolution).
type TaxiMeterData struct {
	AssistedInfo string
	StartTime    string
	EndTime      string
	Fare         string
	TripTime     string
	WaitTime     string
}

// GetTaxiMeterData decodes the '|'-separated taxi_meter_data field.
func (c *Command) GetTaxiMeterData() (TaxiMeterData, bool) {
	raw, ok := c.Get("taxi_meter_data")
	if !ok {
		return TaxiMeterData{}, false
	}
	parts := bytes.Split(raw, []byte("|"))
	var d TaxiMeterData
	if len(parts) >= 2 {
		d.AssistedInfo = string(parts[0])
		d.StartTime = string(parts[1])
	}
	if len(parts) >= 7 {
		d.EndTime = string(parts[3])
		d.Fare = string(parts[4])
		d.TripTime = string(parts[5])
		d.WaitTime = string(parts[6])
	}
	return d, true
}
