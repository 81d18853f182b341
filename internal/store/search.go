package store

import (
	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/search"
)

// Search walks expr through the dialect's Emitter into a WHERE clause
// restricted to the direct children of parentID (deeper descendants
// are not searched) and returns the matching
// objects, hydrated the same way BrowseChildren's results are.
func (s *Store) Search(parentID int, expr search.Expression) ([]*core.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID < 0 {
		// A dynamic container's contents are computed by re-running the
		// saved search that produced it, not by searching this store.
		return nil, nil
	}

	sqlText, err := s.emitter().SearchQuery(parentID, expr)
	if err != nil {
		return nil, err
	}

	res, err := s.selectRows(sqlText)
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
