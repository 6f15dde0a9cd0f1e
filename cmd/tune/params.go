package main

import (
	"fmt"

	"github.com/ShamylZakariya/Surfacer-sub000/config"
)

// ParamSpec defines a single tunable liquid parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of tunable parameters for one liquid.
type ParamVector struct {
	Liquid string
	Specs  []ParamSpec
}

// NewParamVector creates the cohesion parameters of the named liquid, with
// defaults taken from cfg.
func NewParamVector(cfg *config.Config, liquid string) (*ParamVector, error) {
	lc, ok := cfg.Liquids[liquid]
	if !ok {
		return nil, fmt.Errorf("unknown liquid %q", liquid)
	}
	prefix := "liquids." + liquid
	return &ParamVector{
		Liquid: liquid,
		Specs: []ParamSpec{
			{Name: "clumping_force", Path: prefix + ".clumping_force", Min: 0, Max: 200, Default: lc.ClumpingForce},
			{Name: "linear_damping", Path: prefix + ".particle.linear_damping", Min: 0, Max: 0.5, Default: lc.Particle.LinearDamping},
			{Name: "angular_damping", Path: prefix + ".particle.angular_damping", Min: 0, Max: 1, Default: lc.Particle.AngularDamping},
		},
	}, nil
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped values into the liquid's config block.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	lc := cfg.Liquids[pv.Liquid]
	lc.ClumpingForce = clamped[0]
	lc.Particle.LinearDamping = clamped[1]
	lc.Particle.AngularDamping = clamped[2]
	cfg.Liquids[pv.Liquid] = lc
}
