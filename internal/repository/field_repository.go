package repository

import (
	"context"
	"database/sql"

	"github.com/grassly/grassly/internal/model"
)

// FieldRepo persists user-owned field records.  Every query is filtered by
// the owning user id; there is no way to reach another user's rows through
// this type.
type FieldRepo struct{ DB *sql.DB }

func NewFieldRepo(db *sql.DB) *FieldRepo { return &FieldRepo{DB: db} }

// Create inserts a field and fills in its generated ID and creation time.
func (r *FieldRepo) Create(ctx context.Context, f *model.Field) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO fields (user_id, name, location, latitude, longitude, size, surface_type) VALUES (?,?,?,?,?,?,?)",
		f.UserID, f.Name, f.Location, f.Latitude, f.Longitude, f.Size, f.SurfaceType)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = id
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM fields WHERE id=?", id).Scan(&f.CreatedAt)
}

// ListByOwner returns all fields of one user, newest first.
func (r *FieldRepo) ListByOwner(ctx context.Context, userID int64) ([]model.Field, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,name,location,latitude,longitude,size,surface_type,created_at FROM fields WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Field{}
	for rows.Next() {
		var f model.Field
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Location, &f.Latitude, &f.Longitude, &f.Size, &f.SurfaceType, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// GetByIDAndOwner fetches a single field, enforcing ownership.  A missing
// row and a foreign row both come back as ErrFieldNotFound.
func (r *FieldRepo) GetByIDAndOwner(ctx context.Context, id, userID int64) (model.Field, error) {
	var f model.Field
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,name,location,latitude,longitude,size,surface_type,created_at FROM fields WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&f.ID, &f.UserID, &f.Name, &f.Location, &f.Latitude, &f.Longitude, &f.Size, &f.SurfaceType, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return f, ErrFieldNotFound
	}
	return f, err
}

// Update rewrites the mutable columns of an owned field.
func (r *FieldRepo) Update(ctx context.Context, f *model.Field) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE fields SET name=?, location=?, latitude=?, longitude=?, size=?, surface_type=? WHERE id=? AND user_id=?",
		f.Name, f.Location, f.Latitude, f.Longitude, f.Size, f.SurfaceType, f.ID, f.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFieldNotFound
	}
	return nil
}

// Delete removes an owned field.
func (r *FieldRepo) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM fields WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFieldNotFound
	}
	return nil
}
