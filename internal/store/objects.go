package store

import (
	"fmt"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// Column order the mysql dialect's browse query projects in: the
// object table's own columns, followed by the reference-id self-join
// columns. createObjectFromRow and the mysql Emitter's
// browseSelectBase must stay in lockstep on this order.
const (
	idxID = iota
	idxParentID
	idxRefID
	idxType
	idxUpnpClass
	idxTitle
	idxLocation
	idxMimeType
	idxUpdateID
	idxFlags
	idxServiceID
	idxRefLocation
	idxRefMimeType
	idxRefUpnpClass
)

// AddObject inserts a new object (plus its metadata and resource rows)
// and returns its assigned id and the set of containers whose update
// id needs bumping as a result.
func (s *Store) AddObject(obj *core.Object) (int, *core.ChangedContainers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addObjectLocked(obj)
}

func (s *Store) addObjectLocked(obj *core.Object) (int, *core.ChangedContainers, error) {
	changed := &core.ChangedContainers{}
	var newID int

	err := s.withTransaction("add_object", func() error {
		if err := s.checkRefIDLocked(obj); err != nil {
			return err
		}
		if obj.MimeType == "" && obj.LocTag == core.LocationReal && !obj.IsContainer() && s.mime != nil {
			obj.MimeType = s.mime.TypeForLocation(obj.Location)
		}

		id, err := s.insertObjectRowLocked(obj)
		if err != nil {
			return err
		}
		newID = id

		if err := s.insertMetadataLocked(id, obj.Metadata); err != nil {
			return err
		}
		if err := s.insertResourcesLocked(id, core.CompactOrdinals(obj.Resources)); err != nil {
			return err
		}
		changed.Merge(&core.ChangedContainers{UpdatedIDs: []int{obj.ParentID}})
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return newID, changed, nil
}

// checkRefIDLocked validates a virtual alias's reference id against
// the live store, rewriting it to nil if the target is missing rather
// than failing the whole write.
func (s *Store) checkRefIDLocked(obj *core.Object) error {
	if obj.RefID == nil {
		return nil
	}
	if _, err := s.loadObjectLocked(*obj.RefID); err != nil {
		if core.IsNotFound(err) {
			obj.RefID = nil
			return nil
		}
		return err
	}
	return nil
}

func (s *Store) insertObjectRowLocked(obj *core.Object) (int, error) {
	e := s.emitter()
	refID := "NULL"
	if obj.RefID != nil {
		refID = e.QuoteInt(*obj.RefID)
	}
	serviceID := "NULL"
	if obj.ServiceID != "" {
		serviceID = e.QuoteString(obj.ServiceID)
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)",
		e.QuoteIdentifier(core.TableObject),
		e.QuoteIdentifier(core.ColObjectParentID), e.QuoteIdentifier(core.ColObjectRefID),
		e.QuoteIdentifier(core.ColObjectType), e.QuoteIdentifier(core.ColObjectUpnpClass),
		e.QuoteIdentifier(core.ColObjectTitle), e.QuoteIdentifier(core.ColObjectLocation),
		e.QuoteIdentifier(core.ColObjectMimeType), e.QuoteIdentifier(core.ColObjectUpdateID),
		e.QuoteIdentifier(core.ColObjectFlags), e.QuoteIdentifier(core.ColObjectServiceID),
		e.QuoteInt(obj.ParentID), refID,
		e.QuoteInt(int(obj.Type)), e.QuoteString(obj.UpnpClass),
		e.QuoteString(obj.Title), e.QuoteString(core.AddLocationPrefix(obj.LocTag, obj.ServiceTag, obj.Location)),
		e.QuoteString(obj.MimeType), e.QuoteInt(obj.UpdateID),
		e.QuoteInt(int(obj.Flags)), serviceID,
	)

	res, err := s.exec(stmt, true)
	if err != nil {
		return 0, err
	}
	return int(res.LastInsertID), nil
}

func (s *Store) insertMetadataLocked(objectID int, metadata map[string]string) error {
	e := s.emitter()
	for key, value := range metadata {
		stmt := fmt.Sprintf(
			"INSERT INTO %s (%s, %s, %s) VALUES (%s, %s, %s)",
			e.QuoteIdentifier(core.TableMetadata),
			e.QuoteIdentifier(core.ColMetaObjectID), e.QuoteIdentifier(core.ColMetaKey), e.QuoteIdentifier(core.ColMetaValue),
			e.QuoteInt(objectID), e.QuoteString(key), e.QuoteString(value),
		)
		if _, err := s.exec(stmt, false); err != nil {
			return fmt.Errorf("insert metadata %q for object %d: %w", key, objectID, err)
		}
	}
	return nil
}

func (s *Store) insertResourcesLocked(objectID int, resources []core.Resource) error {
	e := s.emitter()
	attrs := s.cfg.ResourceAttributes()
	for _, res := range resources {
		cols := []string{core.ColResObjectID, core.ColResID}
		vals := []string{e.QuoteInt(objectID), e.QuoteInt(res.Ordinal)}
		for _, attr := range attrs {
			v, ok := res.Attrs[attr]
			if !ok {
				continue
			}
			cols = append(cols, attr)
			vals = append(vals, e.QuoteString(v))
		}
		quotedCols := make([]string, len(cols))
		for i, c := range cols {
			quotedCols[i] = e.QuoteIdentifier(c)
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			e.QuoteIdentifier(core.TableResource), joinComma(quotedCols), joinComma(vals))
		if _, err := s.exec(stmt, false); err != nil {
			return fmt.Errorf("insert resource %d for object %d: %w", res.Ordinal, objectID, err)
		}
	}
	return nil
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}

// UpdateObject rewrites obj's object row and diffs its metadata and
// resource rows against the stored state, writing only those that
// changed. The returned ChangedContainers lists the lower of the old
// and new parent ids.
func (s *Store) UpdateObject(obj *core.Object) (*core.ChangedContainers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateObjectLocked(obj)
}

func (s *Store) updateObjectLocked(obj *core.Object) (*core.ChangedContainers, error) {
	changed := &core.ChangedContainers{}

	err := s.withTransaction("update_object", func() error {
		existing, err := s.loadObjectLocked(obj.ID)
		if err != nil {
			return err
		}

		if err := s.checkRefIDLocked(obj); err != nil {
			return err
		}
		if err := s.updateObjectRowLocked(obj); err != nil {
			return err
		}
		if err := s.diffMetadataLocked(obj.ID, existing.Metadata, obj.Metadata); err != nil {
			return err
		}
		if err := s.diffResourcesLocked(obj.ID, existing.Resources, core.CompactOrdinals(obj.Resources)); err != nil {
			return err
		}

		lowest := obj.ParentID
		if existing.ParentID != obj.ParentID {
			if existing.ParentID < lowest {
				lowest = existing.ParentID
			}
		}
		changed.Merge(&core.ChangedContainers{UpdatedIDs: []int{lowest}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

func (s *Store) updateObjectRowLocked(obj *core.Object) error {
	e := s.emitter()
	refID := "NULL"
	if obj.RefID != nil {
		refID = e.QuoteInt(*obj.RefID)
	}
	serviceID := "NULL"
	if obj.ServiceID != "" {
		serviceID = e.QuoteString(obj.ServiceID)
	}

	stmt := fmt.Sprintf(
		"UPDATE %s SET %s = %s, %s = %s, %s = %s, %s = %s, %s = %s, %s = %s, %s = %s, %s = %s, %s = %s WHERE %s = %s",
		e.QuoteIdentifier(core.TableObject),
		e.QuoteIdentifier(core.ColObjectParentID), e.QuoteInt(obj.ParentID),
		e.QuoteIdentifier(core.ColObjectRefID), refID,
		e.QuoteIdentifier(core.ColObjectType), e.QuoteInt(int(obj.Type)),
		e.QuoteIdentifier(core.ColObjectUpnpClass), e.QuoteString(obj.UpnpClass),
		e.QuoteIdentifier(core.ColObjectTitle), e.QuoteString(obj.Title),
		e.QuoteIdentifier(core.ColObjectLocation), e.QuoteString(core.AddLocationPrefix(obj.LocTag, obj.ServiceTag, obj.Location)),
		e.QuoteIdentifier(core.ColObjectMimeType), e.QuoteString(obj.MimeType),
		e.QuoteIdentifier(core.ColObjectFlags), e.QuoteInt(int(obj.Flags)),
		e.QuoteIdentifier(core.ColObjectServiceID), serviceID,
		e.QuoteIdentifier(core.ColObjectID), e.QuoteInt(obj.ID),
	)
	_, err := s.exec(stmt, false)
	return err
}

func (s *Store) diffMetadataLocked(objectID int, before, after map[string]string) error {
	e := s.emitter()
	for key, val := range after {
		old, existed := before[key]
		switch {
		case !existed:
			if err := s.insertMetadataLocked(objectID, map[string]string{key: val}); err != nil {
				return err
			}
		case old != val:
			stmt := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s AND %s = %s",
				e.QuoteIdentifier(core.TableMetadata), e.QuoteIdentifier(core.ColMetaValue), e.QuoteString(val),
				e.QuoteIdentifier(core.ColMetaObjectID), e.QuoteInt(objectID),
				e.QuoteIdentifier(core.ColMetaKey), e.QuoteString(key))
			if _, err := s.exec(stmt, false); err != nil {
				return err
			}
		}
	}
	for key := range before {
		if _, stillPresent := after[key]; !stillPresent {
			stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s AND %s = %s",
				e.QuoteIdentifier(core.TableMetadata),
				e.QuoteIdentifier(core.ColMetaObjectID), e.QuoteInt(objectID),
				e.QuoteIdentifier(core.ColMetaKey), e.QuoteString(key))
			if _, err := s.exec(stmt, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) diffResourcesLocked(objectID int, before, after []core.Resource) error {
	e := s.emitter()
	beforeByOrdinal := make(map[int]core.Resource, len(before))
	for _, r := range before {
		beforeByOrdinal[r.Ordinal] = r
	}
	afterByOrdinal := make(map[int]bool, len(after))

	for _, r := range after {
		afterByOrdinal[r.Ordinal] = true
		old, existed := beforeByOrdinal[r.Ordinal]
		if !existed {
			if err := s.insertResourcesLocked(objectID, []core.Resource{r}); err != nil {
				return err
			}
			continue
		}
		unchanged := true
		for _, attr := range s.cfg.ResourceAttributes() {
			if v, ok := r.Attrs[attr]; ok && v != old.Attrs[attr] {
				unchanged = false
				break
			}
		}
		if unchanged {
			continue
		}
		if err := s.updateResourceLocked(objectID, r); err != nil {
			return err
		}
	}
	for ordinal := range beforeByOrdinal {
		if !afterByOrdinal[ordinal] {
			stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s AND %s = %s",
				e.QuoteIdentifier(core.TableResource),
				e.QuoteIdentifier(core.ColResObjectID), e.QuoteInt(objectID),
				e.QuoteIdentifier(core.ColResID), e.QuoteInt(ordinal))
			if _, err := s.exec(stmt, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) updateResourceLocked(objectID int, res core.Resource) error {
	e := s.emitter()
	attrs := s.cfg.ResourceAttributes()
	for _, attr := range attrs {
		v, ok := res.Attrs[attr]
		if !ok {
			continue
		}
		stmt := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s AND %s = %s",
			e.QuoteIdentifier(core.TableResource), e.QuoteIdentifier(attr), e.QuoteString(v),
			e.QuoteIdentifier(core.ColResObjectID), e.QuoteInt(objectID),
			e.QuoteIdentifier(core.ColResID), e.QuoteInt(res.Ordinal))
		if _, err := s.exec(stmt, false); err != nil {
			return fmt.Errorf("update resource attr %q for object %d res %d: %w", attr, objectID, res.Ordinal, err)
		}
	}
	return nil
}

// LoadObject loads a single object by id, failing with core.ErrNotFound
// if it doesn't exist.
func (s *Store) LoadObject(id int) (*core.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadObjectLocked(id)
}

func (s *Store) loadObjectLocked(id int) (*core.Object, error) {
	if id < 0 {
		return s.loadDynamicLocked(id)
	}
	res, err := s.selectRows(s.emitter().BrowseByID(id))
	if err != nil {
		return nil, err
	}
	defer res.Close()

	row, ok := res.Next()
	if !ok {
		return nil, core.NotFoundf("object %d", id)
	}
	obj, err := s.createObjectFromRow(row)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateObjectLocked(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// LoadObjectByServiceID looks up an object by its service id secondary
// key.
func (s *Store) LoadObjectByServiceID(serviceID string) (*core.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.selectRows(s.emitter().BrowseByServiceID(serviceID))
	if err != nil {
		return nil, err
	}
	defer res.Close()

	row, ok := res.Next()
	if !ok {
		return nil, core.NotFoundf("object with service id %q", serviceID)
	}
	obj, err := s.createObjectFromRow(row)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateObjectLocked(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// BrowseChildren lists the direct children of parentID.
func (s *Store) BrowseChildren(parentID int) ([]*core.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID < 0 {
		// Dynamic containers have no persisted children of their own;
		// their contents are computed by re-running the saved search,
		// a front-end concern out of scope here.
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
		if err := s.hydrateObjectLocked(obj); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (s *Store) hydrateObjectLocked(obj *core.Object) error {
	meta, err := s.retrieveMetadataForObjectLocked(obj.ID)
	if err != nil {
		return err
	}
	obj.Metadata = meta

	res, err := s.retrieveResourcesForObjectLocked(obj.ID)
	if err != nil {
		return err
	}
	obj.Resources = res
	return nil
}

func (s *Store) retrieveMetadataForObjectLocked(objectID int) (map[string]string, error) {
	res, err := s.selectRows(s.emitter().MetadataQuery(objectID))
	if err != nil {
		return nil, err
	}
	defer res.Close()

	out := make(map[string]string)
	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		key := sqlrow.ColString(row, 0, "")
		val := sqlrow.ColString(row, 1, "")
		if key != "" {
			out[key] = val
		}
	}
	return out, nil
}

func (s *Store) retrieveResourcesForObjectLocked(objectID int) ([]core.Resource, error) {
	res, err := s.selectRows(s.emitter().ResourceQuery(objectID))
	if err != nil {
		return nil, err
	}
	defer res.Close()

	attrs := s.cfg.ResourceAttributes()
	var out []core.Resource
	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		r := core.Resource{
			ObjectID: objectID,
			Ordinal:  sqlrow.ColInt(row, 0, 0),
			Attrs:    make(map[string]string),
		}
		for i, attr := range attrs {
			if v, ok := row.Col(i + 1); ok && v != "" {
				r.Attrs[attr] = v
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// createObjectFromRow is the single authoritative decoder for a browse
// query row: it copies the object-type bitmask into Type, strips the
// location prefix to recover a real or virtual path, and resolves the
// reference-id self-join columns for virtual aliases.
func (s *Store) createObjectFromRow(r sqlrow.Row) (*core.Object, error) {
	obj := &core.Object{
		ID:         sqlrow.ColInt(r, idxID, 0),
		ParentID:   sqlrow.ColInt(r, idxParentID, 0),
		RefID:      sqlrow.ColIntPtr(r, idxRefID),
		Type:       core.ObjectType(sqlrow.ColInt(r, idxType, 0)),
		UpnpClass:  sqlrow.ColString(r, idxUpnpClass, ""),
		Title:      sqlrow.ColString(r, idxTitle, ""),
		MimeType:   sqlrow.ColString(r, idxMimeType, ""),
		UpdateID:   sqlrow.ColInt(r, idxUpdateID, 0),
		Flags:      uint32(sqlrow.ColInt(r, idxFlags, 0)),
		ServiceID:  sqlrow.ColString(r, idxServiceID, ""),
	}

	locRaw := sqlrow.ColString(r, idxLocation, "")
	loc, tag, serviceTag := core.StripLocationPrefix(locRaw)
	obj.LocTag = tag
	obj.Location = loc
	obj.ServiceTag = serviceTag

	if obj.RefID != nil {
		if refLoc, ok := r.Col(idxRefLocation); ok && refLoc != "" {
			obj.Location, _, _ = core.StripLocationPrefix(refLoc)
		}
		if refMime, ok := r.Col(idxRefMimeType); ok && refMime != "" {
			obj.MimeType = refMime
		}
		if refClass, ok := r.Col(idxRefUpnpClass); ok && refClass != "" {
			obj.UpnpClass = refClass
		}
	}

	return obj, nil
}
