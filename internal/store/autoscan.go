package store

import (
	"fmt"
	"time"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// GetAutoscanList returns every autoscan directory for mode, ordered by
// object id.
func (s *Store) GetAutoscanList(mode core.ScanMode) ([]*core.AutoscanDirectory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getAutoscanListLocked(mode)
}

func (s *Store) getAutoscanListLocked(mode core.ScanMode) ([]*core.AutoscanDirectory, error) {
	res, err := s.selectRows(s.emitter().AutoscanQuery(string(mode)))
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var out []*core.AutoscanDirectory
	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		out = append(out, decodeAutoscanRow(row))
	}
	return out, nil
}

func decodeAutoscanRow(r sqlrow.Row) *core.AutoscanDirectory {
	interval := sqlrow.ColInt(r, 5, 0)
	lastMod := sqlrow.ColInt(r, 6, 0)
	return &core.AutoscanDirectory{
		ObjectID:     sqlrow.ColInt(r, 0, 0),
		ScanMode:     core.ScanMode(sqlrow.ColString(r, 1, "")),
		Level:        core.ScanLevel(sqlrow.ColString(r, 2, "")),
		Recursive:    sqlrow.ColBool(r, 3, false),
		HiddenFiles:  sqlrow.ColBool(r, 4, false),
		Interval:     time.Duration(interval) * time.Second,
		LastModified: time.Unix(int64(lastMod), 0).UTC(),
		Persistent:   sqlrow.ColBool(r, 7, false),
	}
}

// AddAutoscan inserts a new autoscan directory after checking it
// doesn't overlap an existing one.
func (s *Store) AddAutoscan(adir *core.AutoscanDirectory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.AutoscanOverlapCheck() {
		if err := s.checkOverlappingAutoscansLocked(adir); err != nil {
			return err
		}
	}
	return s.upsertAutoscanLocked(adir)
}

// UpdateAutoscan is AddAutoscan's counterpart for an entry that
// already exists; it re-checks for overlap against every other entry.
func (s *Store) UpdateAutoscan(adir *core.AutoscanDirectory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.AutoscanOverlapCheck() {
		if err := s.checkOverlappingAutoscansLocked(adir); err != nil {
			return err
		}
	}
	return s.upsertAutoscanLocked(adir)
}

func (s *Store) upsertAutoscanLocked(adir *core.AutoscanDirectory) error {
	e := s.emitter()
	stmt := fmt.Sprintf(
		"REPLACE INTO %s (%s, %s, %s, %s, %s, %s, %s, %s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s)",
		e.QuoteIdentifier(core.TableAutoscan),
		e.QuoteIdentifier(core.ColAutoscanObjectID), e.QuoteIdentifier(core.ColAutoscanMode),
		e.QuoteIdentifier(core.ColAutoscanLevel), e.QuoteIdentifier(core.ColAutoscanRecursive),
		e.QuoteIdentifier(core.ColAutoscanHidden), e.QuoteIdentifier(core.ColAutoscanInterval),
		e.QuoteIdentifier(core.ColAutoscanLastMod), e.QuoteIdentifier(core.ColAutoscanPersistent),
		e.QuoteInt(adir.ObjectID), e.QuoteString(string(adir.ScanMode)),
		e.QuoteString(string(adir.Level)), e.QuoteBool(adir.Recursive),
		e.QuoteBool(adir.HiddenFiles), e.QuoteInt(int(adir.Interval/time.Second)),
		e.QuoteInt(int(adir.LastModified.Unix())), e.QuoteBool(adir.Persistent),
	)
	_, err := s.exec(stmt, false)
	return err
}

// RemoveAutoscan drops a single autoscan entry for (objectID, mode).
func (s *Store) RemoveAutoscan(objectID int, mode core.ScanMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeAutoscanLocked(objectID, mode)
}

func (s *Store) removeAutoscanLocked(objectID int, mode core.ScanMode) error {
	e := s.emitter()
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s AND %s = %s",
		e.QuoteIdentifier(core.TableAutoscan),
		e.QuoteIdentifier(core.ColAutoscanObjectID), e.QuoteInt(objectID),
		e.QuoteIdentifier(core.ColAutoscanMode), e.QuoteString(string(mode)))
	_, err := s.exec(stmt, false)
	return err
}

// checkOverlappingAutoscansLocked reports a conflict if any other
// autoscan directory's subtree contains, or is contained by, adir's
// subtree. An entry on the same object id is never a conflict; for a
// pair where one directory is an ancestor of the other, they conflict
// only when the ancestor is recursive, whichever of the two is new.
func (s *Store) checkOverlappingAutoscansLocked(adir *core.AutoscanDirectory) error {
	var existing []*core.AutoscanDirectory
	for _, mode := range []core.ScanMode{core.ScanModeTimed, core.ScanModeInotify} {
		entries, err := s.getAutoscanListLocked(mode)
		if err != nil {
			return err
		}
		existing = append(existing, entries...)
	}

	var conflictIDs []int
	seen := map[int]bool{}
	for _, other := range existing {
		if other.ObjectID == adir.ObjectID {
			// The same object may carry both a timed and an inotify
			// entry; that is not a tree overlap.
			continue
		}
		otherIsAncestor, err := s.isAncestorLocked(other.ObjectID, adir.ObjectID)
		if err != nil {
			return err
		}
		adirIsAncestor, err := s.isAncestorLocked(adir.ObjectID, other.ObjectID)
		if err != nil {
			return err
		}
		// The ancestor's recursive flag governs whether its scan
		// already reaches the descendant directory.
		if (otherIsAncestor && other.Recursive) || (adirIsAncestor && adir.Recursive) {
			if !seen[other.ObjectID] {
				seen[other.ObjectID] = true
				conflictIDs = append(conflictIDs, other.ObjectID)
			}
		}
	}
	if len(conflictIDs) > 0 {
		return &core.OverlapError{NewObjectID: adir.ObjectID, ConflictingIDs: conflictIDs}
	}
	return nil
}

// isAncestorLocked reports whether ancestorID is ancestorID of or
// equal to descendantID, walking up descendantID's parent chain.
func (s *Store) isAncestorLocked(ancestorID, descendantID int) (bool, error) {
	id := descendantID
	for {
		if id == ancestorID {
			return true, nil
		}
		if id == core.RootID {
			return false, nil
		}
		obj, err := s.loadObjectLocked(id)
		if err != nil {
			if core.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		if obj.ParentID == id {
			return false, nil
		}
		id = obj.ParentID
	}
}

// reattachAutoscansLocked runs before a removal set's rows are
// deleted: every autoscan entry on an object about to be removed is
// either reattached to the nearest surviving ancestor (persistent) or
// dropped (non-persistent).
func (s *Store) reattachAutoscansLocked(removing []int) error {
	removeSet := make(map[int]bool, len(removing))
	for _, id := range removing {
		removeSet[id] = true
	}

	for _, mode := range []core.ScanMode{core.ScanModeTimed, core.ScanModeInotify} {
		entries, err := s.getAutoscanListLocked(mode)
		if err != nil {
			return err
		}
		for _, adir := range entries {
			if !removeSet[adir.ObjectID] {
				continue
			}
			if err := s.removeAutoscanLocked(adir.ObjectID, adir.ScanMode); err != nil {
				return err
			}
			if !adir.Persistent {
				continue
			}
			ancestor, err := s.nearestSurvivingAncestorLocked(adir.ObjectID, removeSet)
			if err != nil {
				return err
			}
			adir.ObjectID = ancestor
			if err := s.upsertAutoscanLocked(adir); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) nearestSurvivingAncestorLocked(id int, removeSet map[int]bool) (int, error) {
	for {
		obj, err := s.loadObjectLocked(id)
		if err != nil {
			if core.IsNotFound(err) {
				return core.RootID, nil
			}
			return 0, err
		}
		if !removeSet[obj.ParentID] || obj.ParentID == core.RootID {
			return obj.ParentID, nil
		}
		id = obj.ParentID
	}
}
