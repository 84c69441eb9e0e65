package globe

import "math"

// Rotation is a view rotation in degrees: yaw (Lambda), pitch (Phi) and roll (Gamma).
type Rotation struct {
	Lambda float64
	Phi    float64
	Gamma  float64
}

// ClampLatitude clips phi to [-90, 90].
func ClampLatitude(phi float64) float64 {
	if phi > 90 {
		return 90
	}
	if phi < -90 {
		return -90
	}
	return phi
}

// NormalizeLongitude wraps lambda into (-180, 180].
func NormalizeLongitude(lambda float64) float64 {
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return lambda
	}
	l := math.Mod(lambda, 360)
	if l <= -180 {
		l += 360
	} else if l > 180 {
		l -= 360
	}
	return l
}

// Normalize returns r with Lambda wrapped and Phi clamped. Gamma is left alone.
func (r Rotation) Normalize() Rotation {
	return Rotation{
		Lambda: NormalizeLongitude(r.Lambda),
		Phi:    ClampLatitude(r.Phi),
		Gamma:  r.Gamma,
	}
}

// IsFinite reports whether no component is NaN or infinite.
func (r Rotation) IsFinite() bool {
	return isFinite(r.Lambda) && isFinite(r.Phi) && isFinite(r.Gamma)
}

// LerpRotation interpolates each axis independently.
//
// Lambda is interpolated as a plain number, so going from 170 to -170 sweeps
// through 0 instead of crossing the antimeridian.
func LerpRotation(a, b Rotation, t float64) Rotation {
	t = clamp01(t)
	return Rotation{
		Lambda: lerp(a.Lambda, b.Lambda, t),
		Phi:    lerp(a.Phi, b.Phi, t),
		Gamma:  lerp(a.Gamma, b.Gamma, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
