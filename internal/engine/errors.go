package engine

import "fmt"

// ErrorCode is a converter error. The numbering follows libsamplerate's
// SRC_ERR_* values so codes coming back from the native library map onto
// the same constants. Codes from codeLocalBase up are local to this package.
type ErrorCode int

// Error codes. Each one is usable as a sentinel with errors.Is.
const (
	ErrNoError ErrorCode = iota
	ErrMallocFailed
	ErrBadState
	ErrBadData
	ErrBadDataPtr
	ErrNoPrivate
	ErrBadRatio
	ErrBadProcPtr
	ErrShiftBits
	ErrFilterLen
	ErrBadConverter
	ErrBadChannelCount
	ErrSincBadBufferLen
	ErrSizeIncompatibility
	ErrBadPrivPtr
	ErrBadSincState
	ErrDataOverlap
	ErrBadCallback
	ErrBadMode
	ErrNullCallback
	ErrNoVariableRatio
	ErrSincPrepareDataBadLen
	ErrBadInternalState
)

const (
	ErrRatioStep ErrorCode = codeLocalBase + iota
	ErrInputAfterEnd
	ErrClosed
	ErrNotAvailable
)

var errorMessages = map[ErrorCode]string{
	ErrNoError:               "No error.",
	ErrMallocFailed:          "Malloc failed.",
	ErrBadState:              "SRC_STATE pointer is NULL.",
	ErrBadData:               "SRC_DATA pointer is NULL.",
	ErrBadDataPtr:            "SRC_DATA->data_out or SRC_DATA->data_in is NULL.",
	ErrNoPrivate:             "Internal error. No private data.",
	ErrBadRatio:              fmt.Sprintf("SRC ratio outside [1/%d, %d] range.", maxRatio, maxRatio),
	ErrBadProcPtr:            "Internal error. No process pointer.",
	ErrShiftBits:             "Internal error. SHIFT_BITS too large.",
	ErrFilterLen:             "Internal error. Filter length too large.",
	ErrBadConverter:          "Bad converter number.",
	ErrBadChannelCount:       "Channel count must be >= 1.",
	ErrSincBadBufferLen:      "Internal error. Bad buffer length. Please report this.",
	ErrSizeIncompatibility:   "Internal error. Input data / internal buffer size difference. Please report this.",
	ErrBadPrivPtr:            "Internal error. Private pointer is NULL. Please report this.",
	ErrBadSincState:          "Internal error. Bad sinc state.",
	ErrDataOverlap:           "Input and output data arrays overlap.",
	ErrBadCallback:           "Supplied callback function pointer is NULL.",
	ErrBadMode:               "Calling mode differs from initialisation mode (ie process v callback).",
	ErrNullCallback:          "Callback function pointer is NULL in src_callback_read ().",
	ErrNoVariableRatio:       "This converter only allows constant conversion ratios.",
	ErrSincPrepareDataBadLen: "Internal error : Bad length in prepare_data ().",
	ErrBadInternalState:      "Error : Someone is trampling on my internal state.",
	ErrRatioStep:             "Ratio changed by more than the allowed step since the previous call.",
	ErrInputAfterEnd:         "Input supplied after end of input without a reset.",
	ErrClosed:                "Converter used after it was closed.",
	ErrNotAvailable:          "Native libsamplerate support was not compiled in.",
}

// String returns the libsamplerate style message for the code.
func (e ErrorCode) String() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown error %d.", int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
