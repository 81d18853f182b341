package store

import (
	"fmt"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// UpdateConfigValue is an upsert keyed by (item, key).
func (s *Store) UpdateConfigValue(item, key, value string, status core.ConfigValueStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.emitter()
	stmt := fmt.Sprintf(
		"REPLACE INTO %s (%s, %s, %s, %s) VALUES (%s, %s, %s, %s)",
		e.QuoteIdentifier(core.TableConfigValue),
		e.QuoteIdentifier(core.ColConfigItem), e.QuoteIdentifier(core.ColConfigKey),
		e.QuoteIdentifier(core.ColConfigValue), e.QuoteIdentifier(core.ColConfigStatus),
		e.QuoteString(item), e.QuoteString(key),
		e.QuoteString(value), e.QuoteString(string(status)),
	)
	_, err := s.exec(stmt, false)
	return err
}

// GetConfigValues returns every stored config row in an unspecified
// order; callers sort if they need stability.
func (s *Store) GetConfigValues() ([]*core.ConfigValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.emitter()
	stmt := fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s",
		e.QuoteIdentifier(core.ColConfigItem), e.QuoteIdentifier(core.ColConfigKey),
		e.QuoteIdentifier(core.ColConfigValue), e.QuoteIdentifier(core.ColConfigStatus),
		e.QuoteIdentifier(core.TableConfigValue))

	res, err := s.selectRows(stmt)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var out []*core.ConfigValue
	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		out = append(out, &core.ConfigValue{
			Item:   sqlrow.ColString(row, 0, ""),
			Key:    sqlrow.ColString(row, 1, ""),
			Value:  sqlrow.ColString(row, 2, ""),
			Status: core.ConfigValueStatus(sqlrow.ColString(row, 3, "")),
		})
	}
	return out, nil
}

// RemoveConfigValue deletes every row for item, or every row in the
// table when item is the "*" sentinel.
func (s *Store) RemoveConfigValue(item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.emitter()
	var stmt string
	if item == core.RemoveAllConfigValues {
		stmt = fmt.Sprintf("DELETE FROM %s", e.QuoteIdentifier(core.TableConfigValue))
	} else {
		stmt = fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
			e.QuoteIdentifier(core.TableConfigValue),
			e.QuoteIdentifier(core.ColConfigItem), e.QuoteString(item))
	}
	_, err := s.exec(stmt, false)
	return err
}
