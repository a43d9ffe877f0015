package sbp

// Signal code constants, a subset of libsbp's code_t enumeration covering
// the bands rtcm3.SignalFrequency maps. Unmapped RTCM signal IDs are not
// given a code here; an observation whose signal has no known code is
// dropped with a one-shot warning rather than guessed at.
const (
	CodeGPSL1CA uint8 = 0
	CodeGPSL2CM uint8 = 1
	CodeGPSL2CL uint8 = 7
	CodeGPSL2CX uint8 = 8
	CodeGPSL1P  uint8 = 5
	CodeGPSL2P  uint8 = 6
	CodeGPSL5I  uint8 = 9
	CodeGPSL5Q  uint8 = 10
	CodeGPSL5X  uint8 = 11

	CodeGLOL1OF uint8 = 3
	CodeGLOL2OF uint8 = 4

	CodeSBASL1CA uint8 = 2
	CodeSBASL5I  uint8 = 41
	CodeSBASL5Q  uint8 = 42
	CodeSBASL5X  uint8 = 43

	CodeBDS2B1 uint8 = 12
	CodeBDS2B2 uint8 = 13
	CodeBDS3B1CI uint8 = 44
	CodeBDS3B1CQ uint8 = 45

	CodeGALE1B uint8 = 14
	CodeGALE1C uint8 = 15
	CodeGALE1X uint8 = 16
	CodeGALE6B uint8 = 17
	CodeGALE6C uint8 = 18
	CodeGALE6X uint8 = 19
	CodeGALE7I uint8 = 20
	CodeGALE7Q uint8 = 21
	CodeGALE7X uint8 = 22
	CodeGALE8I uint8 = 23
	CodeGALE5I uint8 = 24
	CodeGALE5Q uint8 = 25
	CodeGALE5X uint8 = 26

	CodeQZSL1CA uint8 = 27
	CodeQZSL2CM uint8 = 28
	CodeQZSL2CL uint8 = 29
	CodeQZSL5I  uint8 = 30
	CodeQZSL5Q  uint8 = 31
)
