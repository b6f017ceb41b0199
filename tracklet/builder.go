// Public domain.

// Package tracklet partitions a sorted detection stream into images and
// links same-night detections into tracklets: short, linear motion
// segments that seed the heliocentric linker (package linker).
package tracklet

import (
	"math"
	"sort"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/kdtree"
)

// Config holds the tunable filters controlling pairing and chaining.
// Distances and rates are in degrees and degrees/day unless noted.
type Config struct {
	MinTrkPts   int     // minimum detections to keep a tracklet
	MinArc      float64 // minimum total arc, degrees
	MaxVel      float64 // degrees/day
	MinVel      float64 // degrees/day
	MinTime     float64 // days, minimum image-pair separation
	MaxTime     float64 // days, maximum image-pair separation
	ImageRad    float64 // degrees, max pointing separation before motion allowance
	MaxGCR      float64 // degrees, max great-circle residual to keep a tracklet
	SigLenScale float64 // trailed-detection length tolerance scale
	SigPAScale  float64 // trailed-detection position-angle tolerance scale
	MaxNetl     int     // cap on edges considered per image pair; 0 means unbounded
	TimeOffset  float64 // days, added to image MJD before night bucketing (unused by the core search, kept for parity with upstream configuration)
	ForceRun    bool    // skip the mintrkpts/maxgcr gate (diagnostic mode)
}

// PartitionImages groups a detection slice, assumed sorted by MJD, into
// images using detio.ImageTimeTol on MJD and matching obscode. It
// rewrites each detection's Image field and returns the built image
// vector; detections already carrying image metadata from ingest should
// instead use the pre-built image list directly.
func PartitionImages(dets []detio.Detection) []detio.Image {
	var images []detio.Image
	start := 0
	for start < len(dets) {
		end := start + 1
		for end < len(dets) &&
			dets[end].MJD-dets[start].MJD <= detio.ImageTimeTol &&
			dets[end].Obscode == dets[start].Obscode {
			end++
		}
		img := detio.Image{
			MJD:      meanMJD(dets[start:end]),
			RA:       dets[start].RA,
			Dec:      dets[start].Dec,
			Obscode:  dets[start].Obscode,
			StartInd: start,
			EndInd:   end,
		}
		idx := len(images)
		for i := start; i < end; i++ {
			dets[i].Image = idx
		}
		images = append(images, img)
		start = end
	}
	return images
}

func meanMJD(dets []detio.Detection) float64 {
	var sum float64
	for _, d := range dets {
		sum += d.MJD
	}
	return sum / float64(len(dets))
}

// candidateEdge is a single detection-pair association between two
// images, before chaining into multi-point tracklets.
type candidateEdge struct {
	image1, image2 int
	det1, det2     int
	velDegPerDay   float64
	arcDeg         float64
}

// Build links detections into tracklets per the filters in cfg. dets must
// be sorted by MJD; images is the partition produced by PartitionImages
// (or an equivalent ingest-time partition). Tracklets are emitted in
// order of (image1 index, image2 index, minimum detection index).
func Build(dets []detio.Detection, images []detio.Image, cfg Config) ([]detio.Tracklet, []detio.TrkDet) {
	var edges []candidateEdge
	for a := range images {
		for b := a + 1; b < len(images); b++ {
			dt := images[b].MJD - images[a].MJD
			if dt < cfg.MinTime || dt > cfg.MaxTime {
				if dt > cfg.MaxTime {
					break
				}
				continue
			}
			sep := astro.AngularDistance(images[a].RA, images[a].Dec, images[b].RA, images[b].Dec)
			if sep > cfg.ImageRad+cfg.MaxVel*dt {
				continue
			}
			edges = append(edges, pairEdges(dets, images[a], images[b], a, b, dt, cfg)...)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].image1 != edges[j].image1 {
			return edges[i].image1 < edges[j].image1
		}
		if edges[i].image2 != edges[j].image2 {
			return edges[i].image2 < edges[j].image2
		}
		return edges[i].det1 < edges[j].det1
	})

	return chain(dets, edges, cfg)
}

// pairEdges finds candidate detection associations between imgA and imgB
// via a k-d tree over imgB's unit vectors, queried around each imgA
// detection with a radius corresponding to maxvel*dt.
func pairEdges(dets []detio.Detection, imgA, imgB detio.Image, idxA, idxB int, dt float64, cfg Config) []candidateEdge {
	nb := imgB.EndInd - imgB.StartInd
	if nb == 0 {
		return nil
	}
	pts := make([]coord.Cart, nb)
	for i := 0; i < nb; i++ {
		pts[i] = dets[imgB.StartInd+i].Unit()
	}
	tree := kdtree.Build3(pts)

	radiusRad := cfg.MaxVel * dt * (math.Pi / 180)
	var out []candidateEdge
	count := 0
	for ia := imgA.StartInd; ia < imgA.EndInd; ia++ {
		u := dets[ia].Unit()
		nearby := tree.RangeQuery(kdtree.Point{u.X, u.Y, u.Z}, radiusRad)
		for _, rel := range nearby {
			ib := imgB.StartInd + rel
			arc := astro.AngularDistance(dets[ia].RA, dets[ia].Dec, dets[ib].RA, dets[ib].Dec)
			vel := arc / dt
			if vel < cfg.MinVel || vel > cfg.MaxVel {
				continue
			}
			if arc < cfg.MinArc {
				continue
			}
			out = append(out, candidateEdge{image1: idxA, image2: idxB, det1: ia, det2: ib, velDegPerDay: vel, arcDeg: arc})
			count++
			if cfg.MaxNetl > 0 && count >= cfg.MaxNetl {
				return out
			}
		}
	}
	return out
}

// chain joins edges sharing a detection into connected components
// (union-find), each a candidate multi-point tracklet, keeping a chain only if its great-circle RMS residual stays
// within maxgcr and it reaches mintrkpts detections (unless ForceRun).
func chain(dets []detio.Detection, edges []candidateEdge, cfg Config) ([]detio.Tracklet, []detio.TrkDet) {
	// Union detections reachable through edges into connected components,
	// then order them by (image1, image2, lowest detection index). dets is
	// sorted by MJD, so a group's lowest and highest detection indices are
	// its earliest and latest detections.
	parent := map[int]int{}
	find := func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	ensure := func(x int) {
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
	}
	union := func(a, b int) {
		ensure(a)
		ensure(b)
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, e := range edges {
		union(e.det1, e.det2)
	}

	groups := map[int][]int{}
	var order []int
	for d := range parent {
		root := find(d)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], d)
	}
	for _, ms := range groups {
		sort.Ints(ms)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := groups[order[i]], groups[order[j]]
		if dets[a[0]].Image != dets[b[0]].Image {
			return dets[a[0]].Image < dets[b[0]].Image
		}
		if dets[a[len(a)-1]].Image != dets[b[len(b)-1]].Image {
			return dets[a[len(a)-1]].Image < dets[b[len(b)-1]].Image
		}
		return a[0] < b[0]
	})

	var tracklets []detio.Tracklet
	var trk2det []detio.TrkDet
	for _, root := range order {
		members := groups[root]
		sort.Slice(members, func(i, j int) bool { return dets[members[i]].MJD < dets[members[j]].MJD })

		if !cfg.ForceRun && len(members) < cfg.MinTrkPts {
			continue
		}

		t := make([]float64, len(members))
		ra := make([]float64, len(members))
		dec := make([]float64, len(members))
		for i, m := range members {
			t[i] = dets[m].MJD
			ra[i] = dets[m].RA
			dec[i] = dets[m].Dec
		}
		fit, err := astro.GreatCircleFit(t, ra, dec)
		if err != nil || (!cfg.ForceRun && fit.CrossTrackRMS > cfg.MaxGCR) {
			if !cfg.ForceRun {
				continue
			}
		}

		id := len(tracklets)
		first, last := members[0], members[len(members)-1]
		tracklets = append(tracklets, detio.Tracklet{
			ID:     id,
			Image1: dets[first].Image,
			Image2: dets[last].Image,
			RA1:    dets[first].RA,
			Dec1:   dets[first].Dec,
			RA2:    dets[last].RA,
			Dec2:   dets[last].Dec,
			Npts:   len(members),
		})
		for _, m := range members {
			trk2det = append(trk2det, detio.TrkDet{TrkID: id, DetNum: m})
		}
	}
	return tracklets, trk2det
}
