/*
Package skytrack is a pipeline for linking short-arc astrometric detections
of moving objects (asteroids, comets, debris) into tracklets, tracklets into
multi-night orbit candidates, and candidates into vetted linkages.

Contents

  Program overview
  Pipeline stages
  Command line tools
  File formats

Program overview

Input is a catalog of point-source detections (an "hldet" file: MJD, RA,
Dec, magnitude, and provenance per row) paired with the image metadata each
detection was found on. Output, after the full pipeline runs, is a cluster
analysis file: one row per surviving orbit candidate, with its fitted
elements and residual statistics.

The pipeline stages are implemented as separate packages so each can be
run, tested, and replaced independently:

  astro     spherical astrometry: angular separation, great-circle fits
  ephem     low-order planetary/solar ephemeris and observer position
  kdtree    a k-d tree over 3D points (unit vectors for same-night
            pairing, positions for multi-night candidate search) and
            4D (time, unit-vector) points for detection labeling
  kepler    two-body Kepler propagation and classical orbital elements
  everhart  N-body numerical integration (Sun plus perturbing planets)
  herget    two-observation range-search orbit determination
  orbitfit  many-observation least-squares orbit refinement
  tracklet  same-night detection pairing into tracklets
  linker    multi-night tracklet linking via range-hypothesis search
  purify    orbit-fit outlier rejection and linkage purity rating
  merge     combining independently-built detection/tracklet sets

detio holds the file formats that connect these stages together, plus
readers for the external formats the pipeline has to interoperate with
(MPC 80-column observations, observatory-code files).

Pipeline stages

A typical run strings the command line tools together in order:

  tracklet       hldet file -> tracklet + trk2det files (images partitioned internally)
  linker         tracklets -> cluster analysis file (orbit candidates)
  purify         tracklets -> cluster analysis file (each tracklet fitted as a candidate)
  merge          combine tracklet-builder runs from independent nights/sites
  labelhldet     attach known-object identifiers to an unlabeled hldet file
  analyzelinkage score a single already-assembled linkage PURE or MIXED

Command line tools

  tracklet -det <f> -trk <f> -trk2det <f> [options]
  linker -det <f> -img <f> -trk <f> -trk2det <f> -out <f> [options]
  purify -det <f> -img <f> -trk <f> -trk2det <f> -out <f> [options]
  merge -runs <f1det,f1img,f1trk,f1trk2det;...> -outdet <f> ... [options]
  labelhldet -unlabeled <f> -label <f> -outfile <f> [options]
  analyzelinkage -det <f> -img <f> [options]

Each tool follows the same usage convention: no arguments (or invalid
arguments) prints a usage message and exits with a nonzero status; -v
prints a version string and exits 0.

File formats

hldet files are CSV with a header row naming columns, which may appear in
any order; unrecognized columns are logged and skipped rather than
treated as fatal. Image files are whitespace-delimited with one row per
image. Tracklet and trk2det files are CSV with a fixed header. The
cluster analysis file is CSV with roughly three dozen named columns
covering fitted orbital elements, residual and quality statistics, and
per-linkage summary fields; it is append-only across pipeline
runs, with the header written once.

The integrator configuration file (read by detio.ReadIntegratorConfig) is
a whitespace-tokenized block format: sub-stage count, timestep, Sun and
Earth ephemeris paths, then a perturbing-planet count followed by one
line per planet (name, GM, forward/backward ephemeris paths).

-------------
Public domain.
*/
package skytrack
