package xp

import (
	"math"

	"mslcoach/internal/bank"
)

// Base XP awarded per difficulty tier, before the score multiplier.
const (
	BaseLow    = 10
	BaseMedium = 20
	BaseHigh   = 30
)

// Score multiplier bounds. A score of 0 earns half the base, a perfect
// score earns one and a half times the base.
const (
	MinMultiplier = 0.5
	MaxMultiplier = 1.5
)

// BaseFor returns the base XP for a difficulty tier. Unknown tiers fall
// back to the lowest base rather than awarding nothing.
func BaseFor(d bank.Difficulty) int {
	switch d {
	case bank.DifficultyHigh:
		return BaseHigh
	case bank.DifficultyMedium:
		return BaseMedium
	default:
		return BaseLow
	}
}

// Multiplier maps a score in [0,100] to the XP multiplier, clamped to
// [MinMultiplier, MaxMultiplier].
func Multiplier(score float64) float64 {
	m := MinMultiplier + score/100
	if m < MinMultiplier {
		m = MinMultiplier
	}
	if m > MaxMultiplier {
		m = MaxMultiplier
	}
	return m
}

// ComputeDelta converts one scored interaction into its XP delta:
// base(difficulty) * multiplier(score), rounded to the nearest integer.
// Pure and deterministic — the same interaction always yields the same
// delta. Guarding against applying a delta twice is the aggregator's job.
func ComputeDelta(score float64, difficulty bank.Difficulty) int {
	return int(math.Round(float64(BaseFor(difficulty)) * Multiplier(score)))
}
