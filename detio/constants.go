// Public domain.

// Package detio holds the data model shared by every component of
// skytrack (detections, images, tracklets) and the external file formats
// the core hands off to: hldet CSV, image files, tracklet files,
// trk2det files, cluster analysis files, configuration files and
// observatory-code files. Argument parsing and logging live with their
// callers; this package only concerns itself with the data contracts.
package detio

import "math"

// Physical and formatting constants shared across the module.
const (
	// ImageTimeTol is the tolerance, in days, for considering two
	// detections to belong to the same image.
	ImageTimeTol = 1 / 86400.0 // 1 second

	// ShortStringLen is the maximum length of an idstring field.
	ShortStringLen = 20

	// NightStep is the width, in days, of a single observing night
	// bucket used when counting distinct nights.
	NightStep = 0.3

	// ASecPRad is arcseconds per radian.
	ASecPRad = 206264.80624709636

	// DegPRad is degrees per radian.
	DegPRad = 180 / math.Pi

	// GMSunKm3Sec2 is the heliocentric gravitational constant, km^3/s^2.
	GMSunKm3Sec2 = 1.32712440018e11

	// AUKm is one astronomical unit, in km.
	AUKm = 1.49597870700e8

	// SolarDay is one mean solar day, in seconds.
	SolarDay = 86400.0

	// TTDeltaT is TT minus UTC, in seconds, used when the caller must
	// move between the two time scales: observer state arrives in UTC,
	// while planet position tables are tabulated in TDB/TT.
	TTDeltaT = 69.184
)
