package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

const defaultContainerClass = "object.container.storageFolder"

// AddContainerChain creates every missing container along virtualPath
// from the root, returning the id of the deepest container. The last
// path element may carry a UPnP class override and metadata;
// intermediate elements use the default container class with no
// metadata. Existing containers are reused unchanged even when their
// class differs from what a caller would have created.
func (s *Store) AddContainerChain(virtualPath []string, lastClass string, lastRefID *int, lastMetadata map[string]string) (int, *core.ChangedContainers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := &core.ChangedContainers{}
	parentID := core.RootID

	for i, title := range virtualPath {
		if title == "" {
			continue
		}
		isLast := i == len(virtualPath)-1

		childID, err := s.findChildByTitleLocked(parentID, title)
		if err == nil {
			parentID = childID
			continue
		}
		if !core.IsNotFound(err) {
			return 0, nil, err
		}

		class := defaultContainerClass
		var refID *int
		var metadata map[string]string
		if isLast {
			if lastClass != "" {
				class = lastClass
			}
			refID = lastRefID
			metadata = lastMetadata
		}

		obj := &core.Object{
			ParentID:  parentID,
			Type:      core.TypeContainer,
			UpnpClass: class,
			Title:     title,
			LocTag:    core.LocationVirtual,
			RefID:     refID,
			Metadata:  metadata,
		}
		newID, _, err := s.addObjectLocked(obj)
		if err != nil {
			return 0, nil, err
		}
		changed.Merge(&core.ChangedContainers{UpdatedIDs: []int{newID}})
		parentID = newID
	}

	return parentID, changed, nil
}

func (s *Store) findChildByTitleLocked(parentID int, title string) (int, error) {
	children, err := s.browseChildrenLocked(parentID)
	if err != nil {
		return 0, err
	}
	for _, c := range children {
		if c.Title == title && c.IsContainer() {
			return c.ID, nil
		}
	}
	return 0, core.NotFoundf("no child %q under object %d", title, parentID)
}

func (s *Store) browseChildrenLocked(parentID int) ([]*core.Object, error) {
	if parentID < 0 {
		return nil, nil
	}
	res, err := s.selectRows(s.emitter().BrowseChildren(parentID))
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var out []*core.Object
	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		obj, err := s.createObjectFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// FindObjectIDByPath descends from the root matching child titles,
// returning the matched object's id. wasRegularFile selects whether an
// item or a container match is preferred when both exist at the leaf.
func (s *Store) FindObjectIDByPath(path []string, wasRegularFile bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.findObjectByPathLocked(path, wasRegularFile)
	if err != nil {
		return 0, err
	}
	return obj.ID, nil
}

// FindObjectByPath is FindObjectIDByPath's full-object counterpart.
func (s *Store) FindObjectByPath(path []string, wasRegularFile bool) (*core.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findObjectByPathLocked(path, wasRegularFile)
}

func (s *Store) findObjectByPathLocked(path []string, wasRegularFile bool) (*core.Object, error) {
	parentID := core.RootID
	var matched *core.Object

	for i, title := range path {
		if title == "" {
			continue
		}
		children, err := s.browseChildrenLocked(parentID)
		if err != nil {
			return nil, err
		}

		isLast := i == len(path)-1
		var candidate *core.Object
		for _, c := range children {
			if c.Title != title {
				continue
			}
			if !isLast {
				if c.IsContainer() {
					candidate = c
					break
				}
				continue
			}
			if wasRegularFile && !c.IsContainer() {
				candidate = c
				break
			}
			if !wasRegularFile && c.IsContainer() {
				candidate = c
				break
			}
			if candidate == nil {
				candidate = c
			}
		}
		if candidate == nil {
			return nil, core.NotFoundf("no object matching path element %q", title)
		}
		matched = candidate
		parentID = candidate.ID
	}

	if matched == nil {
		return s.loadObjectLocked(core.RootID)
	}
	return s.loadObjectLocked(matched.ID)
}

// RemoveObject expands id into its transitive descendant set (when
// all is true, following reference-id aliases into the removed set
// too) and deletes it. A negative (dynamic container) id is a no-op.
func (s *Store) RemoveObject(id int, all bool) (*core.ChangedContainers, error) {
	return s.RemoveObjects([]int{id}, all)
}

// RemoveObjects is RemoveObject's batch form.
func (s *Store) RemoveObjects(ids []int, all bool) (*core.ChangedContainers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var positive []int
	for _, id := range ids {
		if id < 0 {
			continue
		}
		if id == core.RootID {
			return nil, core.ConstraintViolationf("the root container cannot be removed")
		}
		positive = append(positive, id)
	}
	if len(positive) == 0 {
		return &core.ChangedContainers{}, nil
	}

	expanded, err := s.expandRemovalSetLocked(positive, all)
	if err != nil {
		return nil, err
	}

	parents, err := s.parentsOfLocked(expanded)
	if err != nil {
		return nil, err
	}

	changed := &core.ChangedContainers{}
	err = s.withTransaction("remove_objects", func() error {
		if err := s.reattachAutoscansLocked(expanded); err != nil {
			return err
		}
		if err := s.removeObjectsInnerLocked(expanded); err != nil {
			return err
		}
		purged, visited, err := s.purgeEmptyContainersLocked(parents)
		if err != nil {
			return err
		}
		changed.Merge(&core.ChangedContainers{UpdatedIDs: parents})
		changed.Merge(&core.ChangedContainers{UpdatedIDs: visited, PurgedIDs: purged})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// expandRemovalSetLocked walks the parent-id index breadth-first from
// the seed ids to gather every descendant item and container, then
// optionally pulls in reference-id aliases that point into that set.
func (s *Store) expandRemovalSetLocked(seed []int, all bool) ([]int, error) {
	seen := map[int]bool{}
	queue := append([]int{}, seed...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		children, err := s.browseChildrenLocked(id)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if !seen[c.ID] {
				queue = append(queue, c.ID)
			}
		}
	}

	if all {
		aliases, err := s.findAliasesIntoLocked(seen)
		if err != nil {
			return nil, err
		}
		for _, a := range aliases {
			seen[a] = true
		}
	} else {
		if err := s.orphanAliasesIntoLocked(seen); err != nil {
			return nil, err
		}
	}

	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out, nil
}

// findAliasesIntoLocked returns the ids of every object whose ref_id
// points into target.
func (s *Store) findAliasesIntoLocked(target map[int]bool) ([]int, error) {
	var out []int
	for id := range target {
		res, err := s.selectRows(fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s = %s",
			s.emitter().QuoteIdentifier(core.ColObjectID), s.emitter().QuoteIdentifier(core.TableObject),
			s.emitter().QuoteIdentifier(core.ColObjectRefID), s.emitter().QuoteInt(id),
		))
		if err != nil {
			return nil, err
		}
		for {
			row, ok := res.Next()
			if !ok {
				break
			}
			out = append(out, sqlrow.ColInt(row, 0, 0))
		}
		res.Close()
	}
	return out, nil
}

// orphanAliasesIntoLocked null-ies the ref_id of every object pointing
// into target, leaving the alias rows themselves in place.
func (s *Store) orphanAliasesIntoLocked(target map[int]bool) error {
	for id := range target {
		stmt := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = %s",
			s.emitter().QuoteIdentifier(core.TableObject),
			s.emitter().QuoteIdentifier(core.ColObjectRefID),
			s.emitter().QuoteIdentifier(core.ColObjectRefID), s.emitter().QuoteInt(id))
		if _, err := s.exec(stmt, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) parentsOfLocked(ids []int) ([]int, error) {
	seen := map[int]bool{}
	var out []int
	for _, id := range ids {
		obj, err := s.loadObjectLocked(id)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !seen[obj.ParentID] {
			seen[obj.ParentID] = true
			out = append(out, obj.ParentID)
		}
	}
	return out, nil
}

// removeObjectsInnerLocked deletes rows for the given ids in the order
// {resources, metadata, autoscan-for-id, object}.
func (s *Store) removeObjectsInnerLocked(ids []int) error {
	e := s.emitter()
	for _, id := range ids {
		stmts := []string{
			fmt.Sprintf("DELETE FROM %s WHERE %s = %s", e.QuoteIdentifier(core.TableResource), e.QuoteIdentifier(core.ColResObjectID), e.QuoteInt(id)),
			fmt.Sprintf("DELETE FROM %s WHERE %s = %s", e.QuoteIdentifier(core.TableMetadata), e.QuoteIdentifier(core.ColMetaObjectID), e.QuoteInt(id)),
			fmt.Sprintf("DELETE FROM %s WHERE %s = %s", e.QuoteIdentifier(core.TableAutoscan), e.QuoteIdentifier(core.ColAutoscanObjectID), e.QuoteInt(id)),
			fmt.Sprintf("DELETE FROM %s WHERE %s = %s", e.QuoteIdentifier(core.TableObject), e.QuoteIdentifier(core.ColObjectID), e.QuoteInt(id)),
		}
		for _, stmt := range stmts {
			if _, err := s.exec(stmt, false); err != nil {
				return fmt.Errorf("remove object %d: %w", id, err)
			}
		}
	}
	return nil
}

// purgeEmptyContainersLocked iteratively removes containers in
// candidates whose child count (recomputed from the parent-id index,
// never a cached counter) is zero and which are neither the root nor a
// direct child of the root, re-queuing a newly emptied parent each
// time one is purged. It returns the purged ids plus every container
// it visited along the way
// (including ancestors that survive because they still have other
// children) — a survivor's own child list changed too, when the child
// that emptied out from under it was purged, so callers must still
// treat it as updated.
func (s *Store) purgeEmptyContainersLocked(candidates []int) (purged, visited []int, err error) {
	seenVisited := map[int]bool{}
	queue := append([]int{}, candidates...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == core.RootID {
			continue
		}

		obj, loadErr := s.loadObjectLocked(id)
		if loadErr != nil {
			if core.IsNotFound(loadErr) {
				continue
			}
			return nil, nil, loadErr
		}
		if !obj.IsContainer() {
			continue
		}
		if !seenVisited[id] {
			seenVisited[id] = true
			visited = append(visited, id)
		}
		if obj.ParentID == core.RootID {
			continue
		}

		count, countErr := s.childCountLocked(id)
		if countErr != nil {
			return nil, nil, countErr
		}
		if count > 0 {
			continue
		}

		if err := s.removeObjectsInnerLocked([]int{id}); err != nil {
			return nil, nil, err
		}
		purged = append(purged, id)
		queue = append(queue, obj.ParentID)
	}
	return purged, visited, nil
}

func (s *Store) childCountLocked(parentID int) (int, error) {
	res, err := s.selectRows(s.emitter().ChildCountQuery(parentID, false, false))
	if err != nil {
		return 0, err
	}
	defer res.Close()
	row, ok := res.Next()
	if !ok {
		return 0, nil
	}
	return sqlrow.ColInt(row, 0, 0), nil
}

// IncrementUpdateIDs bumps the update_id column of every listed
// container in one statement and returns a packed "id,update_id,..."
// representation for the UPnP eventing layer.
func (s *Store) IncrementUpdateIDs(ids []int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementUpdateIDsLocked(ids)
}

func (s *Store) incrementUpdateIDsLocked(ids []int) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	e := s.emitter()

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = e.QuoteInt(id)
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE %s IN (%s)",
		e.QuoteIdentifier(core.TableObject),
		e.QuoteIdentifier(core.ColObjectUpdateID), e.QuoteIdentifier(core.ColObjectUpdateID),
		e.QuoteIdentifier(core.ColObjectID), joinComma(quoted))
	if _, err := s.exec(stmt, false); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, id := range ids {
		obj, err := s.loadObjectLocked(id)
		if err != nil {
			continue
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(obj.UpdateID))
	}
	return b.String(), nil
}
