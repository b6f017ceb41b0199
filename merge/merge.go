// Public domain.

// Package merge combines detection, image and tracklet outputs from
// multiple independent tracklet-builder runs into one master set,
// de-duplicating detections and collapsing tracklets that settle on the
// same detection set.
package merge

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"skytrack/astro"
	"skytrack/detio"
)

// Run is one tracklet-builder output to be folded into the master set.
type Run struct {
	Images     []detio.Image
	Detections []detio.Detection
	Tracklets  []detio.Tracklet
	Trk2Det    []detio.TrkDet
}

// Config tunes merging.
type Config struct {
	MatchRadDeg float64 // max angular separation to consider two detections duplicates
}

// Result is the merged master set, plus a random session id that
// identifies this merge run in logs.
type Result struct {
	Images     []detio.Image
	Detections []detio.Detection
	Tracklets  []detio.Tracklet
	Trk2Det    []detio.TrkDet
	SessionID  string
}

// Merge folds each run into a master set in order, producing one
// consolidated image/detection/tracklet/trk2det quartet. A fresh
// random session id tags the merge for logging purposes, grounded on the
// same per-run identifier pattern as a database migration batch id.
func Merge(runs []Run, cfg Config) Result {
	sessionID := uuid.New().String()
	var master Result
	master.SessionID = sessionID

	for _, run := range runs {
		imageMap := mergeImages(&master, run.Images)
		detMap, detRemap := mergeDetections(&master, run.Detections, imageMap, cfg)
		trkMap := mergeTracklets(&master, run.Tracklets, imageMap, detMap)
		mergeTrk2Det(&master, run.Trk2Det, trkMap, detRemap)
	}

	collapseDuplicateTracklets(&master, cfg)
	return master
}

// mergeImages merges run images into master by (MJD within
// detio.ImageTimeTol, same obscode), returning a run-index -> master-index
// map.
func mergeImages(master *Result, images []detio.Image) []int {
	imageMap := make([]int, len(images))
	for i, img := range images {
		found := -1
		for mi, existing := range master.Images {
			if existing.Obscode == img.Obscode && math.Abs(existing.MJD-img.MJD) <= detio.ImageTimeTol {
				found = mi
				break
			}
		}
		if found < 0 {
			found = len(master.Images)
			master.Images = append(master.Images, img)
		}
		imageMap[i] = found
	}
	return imageMap
}

// mergeDetections appends detections with rewritten image references,
// then returns a run-index -> master-index map for later trk2det
// rewriting. Actual de-duplication happens once, after all runs are
// appended, in dedupDetections.
func mergeDetections(master *Result, dets []detio.Detection, imageMap []int, cfg Config) ([]int, []int) {
	detMap := make([]int, len(dets))
	for i, d := range dets {
		d.Image = imageMap[d.Image]
		detMap[i] = len(master.Detections)
		master.Detections = append(master.Detections, d)
	}
	return detMap, detMap
}

func mergeTracklets(master *Result, trks []detio.Tracklet, imageMap []int, detMap []int) []int {
	trkMap := make([]int, len(trks))
	for i, tk := range trks {
		tk.Image1 = imageMap[tk.Image1]
		tk.Image2 = imageMap[tk.Image2]
		tk.ID = len(master.Tracklets)
		trkMap[i] = tk.ID
		master.Tracklets = append(master.Tracklets, tk)
	}
	return trkMap
}

func mergeTrk2Det(master *Result, td []detio.TrkDet, trkMap []int, detMap []int) {
	for _, row := range td {
		master.Trk2Det = append(master.Trk2Det, detio.TrkDet{
			TrkID:  trkMap[row.TrkID],
			DetNum: detMap[row.DetNum],
		})
	}
}

// collapseDuplicateTracklets de-duplicates master.Detections by angular
// proximity within the same image, keeping the member with the most
// duplicate partners, rewrites Trk2Det references accordingly, then
// hashes each tracklet's sorted detection-index tuple and collapses
// tracklets sharing a hash.
func collapseDuplicateTracklets(master *Result, cfg Config) {
	// Detection de-dup is run first since tracklet collapse depends on
	// stable detection identity.
	remap := dedupDetections(master, cfg)
	for i := range master.Trk2Det {
		master.Trk2Det[i].DetNum = remap[master.Trk2Det[i].DetNum]
	}

	byTrk := map[int][]int{}
	for _, row := range master.Trk2Det {
		byTrk[row.TrkID] = append(byTrk[row.TrkID], row.DetNum)
	}

	seenHash := map[string]int{} // hash -> surviving tracklet id
	keepTrk := map[int]bool{}
	collapse := map[int]int{} // dropped tracklet id -> surviving id
	var trkIDsInOrder []int
	for id := range byTrk {
		trkIDsInOrder = append(trkIDsInOrder, id)
	}
	sort.Ints(trkIDsInOrder)

	for _, id := range trkIDsInOrder {
		members := append([]int(nil), byTrk[id]...)
		sort.Ints(members)
		h := hashDets(members)
		if survivor, ok := seenHash[h]; ok {
			collapse[id] = survivor
			continue
		}
		seenHash[h] = id
		keepTrk[id] = true
	}

	var filteredTrk []detio.Tracklet
	for _, tk := range master.Tracklets {
		if keepTrk[tk.ID] {
			filteredTrk = append(filteredTrk, tk)
		}
	}
	master.Tracklets = filteredTrk

	var filteredTD []detio.TrkDet
	seen := map[[2]int]bool{}
	for _, row := range master.Trk2Det {
		id := row.TrkID
		if s, ok := collapse[id]; ok {
			id = s
		}
		if !keepTrk[id] {
			continue
		}
		key := [2]int{id, row.DetNum}
		if seen[key] {
			continue
		}
		seen[key] = true
		filteredTD = append(filteredTD, detio.TrkDet{TrkID: id, DetNum: row.DetNum})
	}
	master.Trk2Det = filteredTD
}

// dedupDetections groups detections by (image, angular distance <=
// cfg.MatchRadDeg), keeping the member with the highest number of
// duplicate partners (ties broken by lowest index), and returns an
// old-index -> surviving-index map covering every detection, duplicate
// or not.
func dedupDetections(master *Result, cfg Config) []int {
	n := len(master.Detections)
	remap := make([]int, n)
	for i := range remap {
		remap[i] = i
	}
	if cfg.MatchRadDeg <= 0 {
		return remap
	}

	byImage := map[int][]int{}
	for i, d := range master.Detections {
		byImage[d.Image] = append(byImage[d.Image], i)
	}

	parent := make([]int, n)
	degree := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, idxs := range byImage {
		for i := 0; i < len(idxs); i++ {
			for j := i + 1; j < len(idxs); j++ {
				a, b := idxs[i], idxs[j]
				d := astro.AngularDistance(master.Detections[a].RA, master.Detections[a].Dec,
					master.Detections[b].RA, master.Detections[b].Dec)
				if d <= cfg.MatchRadDeg {
					degree[a]++
					degree[b]++
					union(a, b)
				}
			}
		}
	}

	components := map[int][]int{}
	for i := 0; i < n; i++ {
		r := find(i)
		components[r] = append(components[r], i)
	}

	for _, members := range components {
		if len(members) == 1 {
			continue
		}
		best := members[0]
		for _, m := range members[1:] {
			if degree[m] > degree[best] || (degree[m] == degree[best] && m < best) {
				best = m
			}
		}
		for _, m := range members {
			remap[m] = best
		}
	}

	// Compact master.Detections down to survivors only, renumbering as we
	// go so remap ends up pointing at final indices.
	var compacted []detio.Detection
	compactIdx := make([]int, n)
	for i := range compactIdx {
		compactIdx[i] = -1
	}
	for i := 0; i < n; i++ {
		if remap[i] != i {
			continue // not a survivor; remapped below via its survivor's compact index
		}
		compactIdx[i] = len(compacted)
		compacted = append(compacted, master.Detections[i])
	}
	for i := 0; i < n; i++ {
		remap[i] = compactIdx[remap[i]]
	}
	master.Detections = compacted

	return remap
}

// hashDets builds a stable string key from a sorted detection-index
// tuple, used to collapse tracklets that settled on identical membership.
func hashDets(sortedIdxs []int) string {
	return fmt.Sprint(sortedIdxs)
}
