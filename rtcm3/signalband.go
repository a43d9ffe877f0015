package rtcm3

// msmSignalBand tables map an MSM signal ID (1-32, as carried in the
// header's signal mask) to the band digit of its RINEX-style observation
// code, grounded on gnssgo's msm_sig_gps/msm_sig_glo/msm_sig_gal/
// msm_sig_qzs/msm_sig_sbs tables (RTCM 10403.3 tables
// 3.5-91/96/99/102/105). Each table is indexed directly by signal
// ID (index 0 unused); 0 in the table means "reserved, no signal".
var msmSignalBandGPS = [33]byte{
	0,
	0, '1', '1', '1', 0, 0, 0, '2', '2', '2', 0, 0, // 1-12
	0, 0, '2', '2', '2', 0, 0, 0, 0, '5', '5', '5', // 13-24
	0, 0, 0, 0, 0, '1', '1', '1', // 25-32
}

var msmSignalBandGLONASS = [33]byte{
	0,
	0, '1', '1', 0, 0, 0, 0, '2', '2', 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var msmSignalBandGalileo = [33]byte{
	0,
	0, '1', '1', '1', '1', '1', 0, '6', '6', '6', '6', '6', // 1-12
	0, '7', '7', '7', 0, '8', '8', '8', 0, '5', '5', '5', // 13-24
	0, 0, 0, 0, 0, 0, 0, 0, // 25-32
}

var msmSignalBandQZSS = [33]byte{
	0,
	0, '1', 0, 0, 0, 0, 0, 0, '6', '6', '6', 0, // 1-12
	0, 0, '2', '2', '2', 0, 0, 0, 0, '5', '5', '5', // 13-24
	0, 0, 0, 0, 0, '1', '1', '1', // 25-32
}

var msmSignalBandSBAS = [33]byte{
	0,
	0, '1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, '5', '5', '5',
	0, 0, 0, 0, 0, 0, 0, 0,
}

// BeiDou band mapping is not present in the reference corpus's active
// table (the sibling repo's BeiDou table is commented out, "support
// B1C B2a by cjb"); B1I/B3/B2I are covered here from that same comment
// block since they're what the 1074-class legacy translators target.
var msmSignalBandBeiDou = [33]byte{
	0,
	0, '2', '2', '2', 0, 0, 0, '6', '6', '6', 0, 0, // 1-12: B1I, B3
	0, '7', '7', '7', 0, 0, 0, 0, 0, 0, 0, 0, // 13-24: B2I
	0, 0, 0, 0, 0, 0, 0, 0, // 25-32
}

// signalBand returns the RINEX band digit for signalID under
// constellation, or 0 if unmapped.
func signalBand(c Constellation, signalID uint) byte {
	if signalID == 0 || signalID > 32 {
		return 0
	}
	switch c {
	case ConstellationGPS:
		return msmSignalBandGPS[signalID]
	case ConstellationGLONASS:
		return msmSignalBandGLONASS[signalID]
	case ConstellationGalileo:
		return msmSignalBandGalileo[signalID]
	case ConstellationQZSS:
		return msmSignalBandQZSS[signalID]
	case ConstellationSBAS:
		return msmSignalBandSBAS[signalID]
	case ConstellationBeiDou:
		return msmSignalBandBeiDou[signalID]
	}
	return 0
}

// Carrier frequencies in Hz, grounded on gnssgo's FREQ1/FREQ2/FREQ5/
// FREQ6/FREQ7 constants (IS-GPS-200/Galileo ICD/BeiDou ICD band centers)
// and FREQ1_GLO/DFRQ1_GLO/FREQ2_GLO/DFRQ2_GLO for GLONASS's FDMA bands.
const (
	freqL1       = 1.57542e9
	freqL2       = 1.22760e9
	freqL5       = 1.17645e9
	freqE6       = 1.27875e9
	freqE5b      = 1.20714e9
	freqB1I      = 1.561098e9
	freqB3       = 1.26852e9
	freqGLO1Base = 1.60200e9
	freqGLO1Step = 0.56250e6
	freqGLO2Base = 1.24600e9
	freqGLO2Step = 0.43750e6
)

// SignalFrequency returns the carrier frequency in Hz for an MSM signal
// ID under the given constellation, consulting fcn (RTCM convention,
// 0-13, 255=unknown) only for GLONASS's FDMA bands. ok is false when the
// signal ID is unmapped or (for GLONASS) the FCN is unknown - the
// caller's documented fallback is to clear phase_valid/doppler_valid,
// per §4.3's analogous unknown-FCN policy.
func SignalFrequency(c Constellation, signalID uint, fcn int) (hz float64, ok bool) {
	band := signalBand(c, signalID)
	if band == 0 {
		return 0, false
	}

	if c == ConstellationGLONASS {
		if fcn < 0 || fcn > GLOMaxFCN {
			return 0, false
		}
		n := float64(fcn) - 7 // RTCM FCN is 0-13, offset by GLOFCNOffset=7 from the ICD's -7..+6 channel numbers.
		switch band {
		case '1':
			return freqGLO1Base + freqGLO1Step*n, true
		case '2':
			return freqGLO2Base + freqGLO2Step*n, true
		}
		return 0, false
	}

	if c == ConstellationBeiDou {
		switch band {
		case '2':
			return freqB1I, true
		case '6':
			return freqB3, true
		case '7':
			return freqE5b, true
		}
		return 0, false
	}

	switch band {
	case '1':
		return freqL1, true
	case '2':
		return freqL2, true
	case '5':
		return freqL5, true
	case '6':
		return freqE6, true
	case '7':
		return freqE5b, true
	case '8':
		return (freqL5 + freqE5b) / 2, true // E5a+b midpoint, AltBOC.
	}
	return 0, false
}
