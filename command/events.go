package command

// eventNames maps an AAA event code to its human-readable name (§4.2).
// Unknown codes are not an error: the numeric code remains reportable on
// its own.
var eventNames = map[int]string{
	1:   "SOS Button Pressed",
	2:   "Input 2 Active",
	3:   "Engine On",
	4:   "Input 4 Active",
	5:   "Input 5 Active",
	9:   "SOS Button Released",
	10:  "Input 2 Inactive",
	11:  "Engine Off",
	12:  "Input 4 Inactive",
	13:  "Input 5 Inactive",
	17:  "Low Battery",
	18:  "Low External Battery",
	19:  "Speeding",
	20:  "Enter Geo-fence",
	21:  "Exit Geo-fence",
	22:  "External Battery On",
	23:  "External Battery Cut",
	24:  "GPS Signal Lost",
	25:  "GPS Signal Recovery",
	26:  "Enter Sleep",
	27:  "Exit Sleep",
	28:  "GPS Antenna Cut",
	29:  "Device Reboot",
	31:  "Heartbeat",
	32:  "Cornering",
	33:  "Track By Distance",
	34:  "Reply Current (Passive)",
	35:  "Track By Time Interval",
	36:  "Tow",
	37:  "RFID",
	39:  "Photo",
	40:  "Power Off",
	41:  "Stop Moving",
	42:  "Start Moving",
	44:  "GSM Jamming",
	50:  "Temperature High",
	51:  "Temperature Low",
	52:  "Full Fuel",
	53:  "Low Fuel",
	54:  "Fuel Theft",
	56:  "Armed",
	57:  "Disarmed",
	58:  "Vehicle Theft",
	63:  "No GSM Jamming",
	65:  "Press Input 1 (SOS) to Call",
	66:  "Press Input 2 to Call",
	67:  "Press Input 3 to Call",
	68:  "Press Input 4 to Call",
	69:  "Press Input 5 to Call",
	70:  "Reject Incoming Call",
	71:  "Get Location by Call",
	72:  "Auto Answer Incoming Call",
	73:  "Listen-in (Voice Monitoring)",
	79:  "Fall",
	80:  "Install",
	81:  "Drop Off",
	109: "Taxi Meter Data",
	129: "Harsh Braking",
	130: "Harsh Acceleration",
	133: "Idle Overtime",
	134: "Idle Recovery",
	135: "Fatigue Driving",
	136: "Enough Rest After Fatigue Driving",
	139: "Maintenance Notice",
	144: "Ignition On",
	145: "Ignition Off",
}

// EventName resolves an integer event code to its registered name. The
// second return value is false for an unregistered code; the caller can
// still report the numeric id on its own.
func EventName(code int) (string, bool) {
	name, ok := eventNames[code]
	return name, ok
}

// EventNameBytes accepts the event code as the raw ASCII-decimal bytes
// carried on the wire, matching §4.2's "accepting the id as integer,
// text, or bytes" requirement.
func EventNameBytes(code []byte) (string, bool) {
	n, ok := atoiSafe(code)
	if !ok {
		return "", false
	}
	return EventName(n)
}

// EventNameText accepts the event code as decimal text.
func EventNameText(code string) (string, bool) {
	return EventNameBytes([]byte(code))
}

func atoiSafe(b []byte) (int, bool) {
	n := 0
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
