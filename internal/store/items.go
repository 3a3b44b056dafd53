package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// AddWorkItem creates a visible work item unless one with that name exists.
// It reports whether a row was created.
func (s *Store) AddWorkItem(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, wrap("add work item", errors.New("empty name"))
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO work_items (name, description, visible) VALUES (?, NULL, 1)`,
		name,
	)
	if err != nil {
		return false, wrap("add work item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("add work item", err)
	}
	return n > 0, nil
}

func (s *Store) GetWorkItem(id int64) (*WorkItem, error) {
	w := &WorkItem{}
	var desc sql.NullString
	var visible int
	err := s.db.QueryRow(
		`SELECT id, name, description, visible FROM work_items WHERE id = ?`, id,
	).Scan(&w.ID, &w.Name, &desc, &visible)
	if err != nil {
		return nil, wrap(fmt.Sprintf("get work item %d", id), err)
	}
	w.Description = desc.String
	w.Visible = visible == 1
	return w, nil
}

// AvailableWork lists the visible work items in creation order.
func (s *Store) AvailableWork() ([]WorkItem, error) {
	return s.listWorkItems(`SELECT id, name, description, visible FROM work_items WHERE visible = 1 ORDER BY id`)
}

// WorkItems lists every work item, hidden ones included, so historical
// sessions can still be labelled.
func (s *Store) WorkItems() ([]WorkItem, error) {
	return s.listWorkItems(`SELECT id, name, description, visible FROM work_items ORDER BY id`)
}

func (s *Store) listWorkItems(query string) ([]WorkItem, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrap("list work items", err)
	}
	defer rows.Close()

	items := []WorkItem{}
	for rows.Next() {
		var w WorkItem
		var desc sql.NullString
		var visible int
		if err := rows.Scan(&w.ID, &w.Name, &desc, &visible); err != nil {
			return nil, wrap("list work items", err)
		}
		w.Description = desc.String
		w.Visible = visible == 1
		items = append(items, w)
	}
	return items, wrap("list work items", rows.Err())
}

// SetWorkItemVisible hides or shows an item in AvailableWork.
func (s *Store) SetWorkItemVisible(id int64, visible bool) error {
	v := 0
	if visible {
		v = 1
	}
	res, err := s.db.Exec(`UPDATE work_items SET visible = ? WHERE id = ?`, v, id)
	if err != nil {
		return wrap("set work item visibility", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("set work item visibility", err)
	}
	if n == 0 {
		return wrap("set work item visibility", fmt.Errorf("work item %d: %w", id, sql.ErrNoRows))
	}
	return nil
}
