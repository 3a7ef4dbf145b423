package commandercore

// Command channel for Commander Core devices.
//
// Output reports are reportLength+1 bytes: report ID 0x00, then a 0x08 host
// marker, a two-byte command, and arguments. Responses are reportLength
// bytes: the command echoed in bytes 0..1, payload from byte 2. Bulk data
// moves through "modes": a mode is opened on the command channel, its buffer
// is read or written as a tagged blob, and the mode is closed again. Blob
// payloads start with a two-byte data type that must match what the caller
// expects.

const (
	vendorCorsair = 0x1b1c

	hostMarker = 0x08

	reportLengthCore = 1024
	reportLengthXT   = 96
)

// Two-byte commands, sent little-endian at bytes 2..3 of an output report.
var (
	cmdWake        = [2]byte{0x01, 0x03}
	cmdSleep       = [2]byte{0x01, 0x03}
	cmdGetFirmware = [2]byte{0x02, 0x13}
	cmdReset       = [2]byte{0x05, 0x01}
	cmdOpenMode    = [2]byte{0x0d, 0x00}
	cmdCloseMode   = [2]byte{0x05, 0x05}
	cmdRead        = [2]byte{0x08, 0x00}
	cmdWrite       = [2]byte{0x06, 0x00}
)

// Power state arguments for cmdWake/cmdSleep.
var (
	argWake  = []byte{0x00, 0x02}
	argSleep = []byte{0x00, 0x01}
	argReset = []byte{0x01}
)

// Modes select which data buffer cmdRead/cmdWrite operate on.
var (
	modeGetSpeeds      = []byte{0x17}
	modeGetTemps       = []byte{0x21}
	modeHwSpeedMode    = []byte{0x60, 0x6d}
	modeHwFixedPercent = []byte{0x61, 0x6d}
	modeLighting       = []byte{0x22}
)

// Data types tag mode buffers; reads verify them before decoding.
var (
	dataTypeSpeeds       = [2]byte{0x06, 0x00}
	dataTypeSpeedMode    = [2]byte{0x03, 0x00}
	dataTypeFixedPercent = [2]byte{0x04, 0x00}
	dataTypeTemps        = [2]byte{0x10, 0x00}
	dataTypeLighting     = [2]byte{0x12, 0x00}
)

// Speed mode byte per channel in the hw speed mode buffer.
const (
	speedModeFixedPercent = 0x00
	speedModeCurve        = 0x02
)

// Temp sensor status byte in the temps buffer.
const tempConnected = 0x00
