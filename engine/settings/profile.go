package settings

// DeviceClass selects between the desktop and mobile quality tables.
type DeviceClass int

const (
	// DeviceDesktop is a discrete or capable integrated GPU.
	DeviceDesktop DeviceClass = iota

	// DeviceMobile trades steps and samples for frame time.
	DeviceMobile
)

// String returns the lower-case device class name.
func (d DeviceClass) String() string {
	if d == DeviceMobile {
		return "mobile"
	}
	return "desktop"
}

// QualityProfile bundles the render settings and export parameters for one tier.
type QualityProfile struct {
	Name            string
	Settings        RenderSettings
	SampleCount     int
	DenoiseStrength float32
	AutoEnhance     bool
	RenderScale     float32
}

// The tier tables are package private; callers get copies through SelectProfile and
// ProfileByName.
var (
	balancedDesktop = newProfile("balanced-desktop", 200, 8, 14, false, 4, 0.35, 1.0)
	ultraDesktop    = newProfile("ultra-desktop", 420, 12, 20, false, 16, 0.5, 1.0)
	balancedMobile  = newProfile("balanced-mobile", 96, 6, 10, true, 2, 0.3, 0.6)
	ultraMobile     = newProfile("ultra-mobile", 220, 9, 14, false, 8, 0.45, 0.75)
)

func newProfile(name string, steps, iters int, maxDist float32, lowPower bool, samples int, denoise, scale float32) QualityProfile {
	s := Default()
	s.MaxSteps = steps
	s.MbIters = iters
	s.MaxDist = maxDist
	s.LowPower = lowPower
	if iters >= 10 {
		s.MinHit = 0.0006
	}
	return QualityProfile{
		Name:            name,
		Settings:        s,
		SampleCount:     samples,
		DenoiseStrength: denoise,
		AutoEnhance:     true,
		RenderScale:     scale,
	}
}

// SelectProfile picks the quality tier for an entitlement state and device class. The result
// is a copy the caller may modify.
//
// Parameters:
//   - unlocked: true when premium export is unlocked
//   - device: the device class
//
// Returns:
//   - QualityProfile: the selected profile
func SelectProfile(unlocked bool, device DeviceClass) QualityProfile {
	switch {
	case unlocked && device == DeviceMobile:
		return ultraMobile
	case unlocked:
		return ultraDesktop
	case device == DeviceMobile:
		return balancedMobile
	default:
		return balancedDesktop
	}
}

// ProfileByName looks up a profile tier by its short name ("balanced" or "ultra").
//
// Parameters:
//   - name: the tier name
//   - device: the device class
//
// Returns:
//   - QualityProfile: the profile
//   - bool: false if the name is unknown
func ProfileByName(name string, device DeviceClass) (QualityProfile, bool) {
	switch name {
	case "balanced":
		return SelectProfile(false, device), true
	case "ultra":
		return SelectProfile(true, device), true
	default:
		return QualityProfile{}, false
	}
}
