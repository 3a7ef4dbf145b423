// Package pmbus implements the PMBus/SMBus primitives used by PSU drivers:
// standard command codes, the LINEAR11 and LINEAR16 fixed-point encodings,
// and the SMBus Packet Error Code checksum.
package pmbus

// Command is a PMBus command code.
type Command byte

// Standard PMBus command codes (PMBus spec part II).
const (
	Page             Command = 0x00
	VoutMode         Command = 0x20
	FanConfig12      Command = 0x3a
	FanCommand1      Command = 0x3b
	ReadVin          Command = 0x88
	ReadIin          Command = 0x89
	ReadVout         Command = 0x8b
	ReadIout         Command = 0x8c
	ReadTemperature1 Command = 0x8d
	ReadTemperature2 Command = 0x8e
	ReadTemperature3 Command = 0x8f
	ReadFanSpeed1    Command = 0x90
	ReadPout         Command = 0x96
	ReadPin          Command = 0x97
	MfrID            Command = 0x99
	MfrModel         Command = 0x9a
	MfrRevision      Command = 0x9b
)

func (c Command) String() string {
	switch c {
	case Page:
		return "PAGE"
	case VoutMode:
		return "VOUT_MODE"
	case FanConfig12:
		return "FAN_CONFIG_1_2"
	case FanCommand1:
		return "FAN_COMMAND_1"
	case ReadVin:
		return "READ_VIN"
	case ReadIin:
		return "READ_IIN"
	case ReadVout:
		return "READ_VOUT"
	case ReadIout:
		return "READ_IOUT"
	case ReadTemperature1:
		return "READ_TEMPERATURE_1"
	case ReadTemperature2:
		return "READ_TEMPERATURE_2"
	case ReadTemperature3:
		return "READ_TEMPERATURE_3"
	case ReadFanSpeed1:
		return "READ_FAN_SPEED_1"
	case ReadPout:
		return "READ_POUT"
	case ReadPin:
		return "READ_PIN"
	case MfrID:
		return "MFR_ID"
	case MfrModel:
		return "MFR_MODEL"
	case MfrRevision:
		return "MFR_REVISION"
	}
	return "0x" + string("0123456789abcdef"[c>>4]) + string("0123456789abcdef"[c&0x0f])
}
