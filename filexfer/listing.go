package filexfer

import (
	"fmt"
	"strings"
	"time"
)

// listingKey identifies one in-flight D01 listing session: one device may
// run several listings over its lifetime, so the session is not keyed by
// imei alone.
type listingKey struct {
	imei    string
	session string
}

type listing struct {
	total       int
	pieces      map[int]string
	lastUpdated time.Time
}

// Listings assembles D01 response fragments into a canonical file set,
// keyed by (imei, session). The session key is caller-supplied (e.g. a
// monotonic counter per D01 request) since the wire protocol carries no
// explicit listing identifier of its own. The zero value is ready to use.
type Listings struct {
	sessions map[listingKey]*listing
}

// NewListings returns a ready-to-use aggregator.
func NewListings() *Listings {
	return &Listings{sessions: make(map[listingKey]*listing)}
}

// Accept records one D01 response fragment. total must stay constant
// across the session; a later fragment reporting a different total fails
// with ErrMismatch.
func (l *Listings) Accept(imei, session string, total, index int, fragment string) error {
	if l.sessions == nil {
		l.sessions = make(map[listingKey]*listing)
	}
	key := listingKey{imei: imei, session: session}
	sess, ok := l.sessions[key]
	if !ok {
		sess = &listing{total: total, pieces: make(map[int]string, total)}
		l.sessions[key] = sess
	} else if sess.total != total {
		return fmt.Errorf("%w: listing %s/%s declared total %d, fragment declares %d",
			ErrMismatch, imei, session, sess.total, total)
	}
	sess.pieces[index] = fragment
	sess.lastUpdated = time.Now()
	return nil
}

// Complete reports whether every index in [0, total) has arrived.
func (l *Listings) Complete(imei, session string) bool {
	sess := l.sessions[listingKey{imei: imei, session: session}]
	if sess == nil {
		return false
	}
	for i := 0; i < sess.total; i++ {
		if _, ok := sess.pieces[i]; !ok {
			return false
		}
	}
	return true
}

// FileSet concatenates a complete session's pieces in index order, splits
// on '|', drops a trailing empty token produced by a terminal separator,
// and removes the session. ok is false if the session is incomplete or
// does not exist.
func (l *Listings) FileSet(imei, session string) (files []string, ok bool) {
	key := listingKey{imei: imei, session: session}
	sess := l.sessions[key]
	if sess == nil {
		return nil, false
	}
	var b strings.Builder
	for i := 0; i < sess.total; i++ {
		frag, present := sess.pieces[i]
		if !present {
			return nil, false
		}
		b.WriteString(frag)
	}
	parts := strings.Split(b.String(), "|")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	delete(l.sessions, key)
	return parts, true
}

// Inventory is the cumulative, order-independent device file set built by
// merging completed listings (§4.6, §10.3): Merge/Remove reducers
// so merging the same listing twice, or listings observed out of order,
// converges to the same set.
type Inventory struct {
	files map[string]map[string]struct{} // imei -> set of file names
}

// NewInventory returns a ready-to-use inventory.
func NewInventory() *Inventory {
	return &Inventory{files: make(map[string]map[string]struct{})}
}

// Merge folds a completed file set into the device's cumulative inventory.
func (inv *Inventory) Merge(imei string, files []string) {
	if inv.files == nil {
		inv.files = make(map[string]map[string]struct{})
	}
	set, ok := inv.files[imei]
	if !ok {
		set = make(map[string]struct{})
		inv.files[imei] = set
	}
	for _, f := range files {
		set[f] = struct{}{}
	}
}

// Remove drops one file name from the device's cumulative inventory.
func (inv *Inventory) Remove(imei, file string) {
	if set, ok := inv.files[imei]; ok {
		delete(set, file)
	}
}

// Files returns the device's current cumulative file set.
func (inv *Inventory) Files(imei string) []string {
	set := inv.files[imei]
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	return out
}
