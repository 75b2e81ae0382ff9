package game

import "math"

// Vec2 is a point or direction in world space
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Distance returns the euclidean distance between two points
func Distance(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// AngleTo returns the heading (radians) from a toward b using atan2(dy, dx)
func AngleTo(a, b Vec2) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Step advances a point by speed along angle
func Step(p Vec2, angle, speed float64) Vec2 {
	return Vec2{
		X: p.X + math.Cos(angle)*speed,
		Y: p.Y + math.Sin(angle)*speed,
	}
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampBox keeps a size×size box with top-left p fully inside a w×h world
func ClampBox(p Vec2, size, w, h float64) Vec2 {
	return Vec2{
		X: Clamp(p.X, 0, w-size),
		Y: Clamp(p.Y, 0, h-size),
	}
}

// InBounds reports whether point p lies inside [0,w]×[0,h] (edges inclusive)
func InBounds(p Vec2, w, h float64) bool {
	return p.X >= 0 && p.X <= w && p.Y >= 0 && p.Y <= h
}

// Center returns the center of a size×size box whose top-left is p
func Center(p Vec2, size float64) Vec2 {
	return Vec2{p.X + size/2, p.Y + size/2}
}

// CirclesOverlap is the strict narrow-phase test for projectile hits
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	return Distance(a, b) < ra+rb
}
